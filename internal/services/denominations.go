package services

import (
	"fmt"
	"slices"
)

// DefaultDenominationValues are the coins the machine accepts and pays out.
var DefaultDenominationValues = []int64{5, 10, 20, 50, 100}

// Denominations is the immutable set of valid coin values. Build it once at startup
// and share the pointer; nothing mutates it afterwards.
type Denominations struct {
	descending []int64
}

// NewDenominations validates values and returns the policy. Values must be positive
// and unique, and every value must be a multiple of the smallest one; order does not
// matter.
//
// Prices are multiples of the smallest coin, so with that divisibility every balance
// left after a purchase breaks into coins greedily without remainder. Sets such as
// {10, 25} do not have this property and are rejected.
func NewDenominations(values []int64) (*Denominations, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("denominations: at least one value is required")
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for i, v := range sorted {
		if v <= 0 {
			return nil, fmt.Errorf("denominations: value %d must be positive", v)
		}
		if i > 0 && sorted[i-1] == v {
			return nil, fmt.Errorf("denominations: duplicate value %d", v)
		}
	}
	for _, v := range sorted[1:] {
		if v%sorted[0] != 0 {
			return nil, fmt.Errorf("denominations: value %d is not a multiple of the smallest value %d", v, sorted[0])
		}
	}
	slices.Reverse(sorted)

	return &Denominations{descending: sorted}, nil
}

// DefaultDenominations returns the policy for 5, 10, 20, 50 and 100.
func DefaultDenominations() *Denominations {
	d, err := NewDenominations(DefaultDenominationValues)
	if err != nil {
		panic(err)
	}
	return d
}

// IsValidDeposit reports whether amount is exactly one coin value.
func (d *Denominations) IsValidDeposit(amount int64) bool {
	return slices.Contains(d.descending, amount)
}

// Descending returns a copy of the coin values, largest first.
func (d *Denominations) Descending() []int64 {
	return slices.Clone(d.descending)
}

// Smallest returns the smallest coin value. Prices must be a multiple of it.
func (d *Denominations) Smallest() int64 {
	return d.descending[len(d.descending)-1]
}

// ComputeChange breaks amount into coins greedily, largest first. ComputeChange(0)
// returns an empty slice.
//
// Every reachable amount is a sum of deposits minus a price that is a multiple of the
// smallest coin, so a remainder means the engine let an invalid value through.
func (d *Denominations) ComputeChange(amount int64) []int64 {
	if amount < 0 {
		panic(fmt.Sprintf("denominations: negative change amount %d", amount))
	}

	change := make([]int64, 0)
	for _, coin := range d.descending {
		count := amount / coin
		for range count {
			change = append(change, coin)
		}
		amount -= count * coin
	}

	if amount != 0 {
		panic(fmt.Sprintf("denominations: change leaves remainder %d", amount))
	}
	return change
}

func (d *Denominations) String() string {
	return fmt.Sprint(d.descending)
}
