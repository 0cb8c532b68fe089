package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDenominations(t *testing.T) {
	tests := []struct {
		name    string
		values  []int64
		wantErr bool
	}{
		{"defaults", DefaultDenominationValues, false},
		{"unsorted", []int64{20, 5, 100}, false},
		{"empty", nil, true},
		{"zero value", []int64{0, 5}, true},
		{"negative value", []int64{-5, 10}, true},
		{"duplicate value", []int64{5, 10, 5}, true},
		{"value not a multiple of the smallest", []int64{10, 25}, true},
		{"smallest divides the rest", []int64{25, 50, 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDenominations(tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestDenominations_Descending(t *testing.T) {
	d, err := NewDenominations([]int64{20, 5, 100, 10, 50})
	require.NoError(t, err)

	values := d.Descending()
	assert.Equal(t, []int64{100, 50, 20, 10, 5}, values)
	assert.Equal(t, int64(5), d.Smallest())

	values[0] = 1
	assert.Equal(t, []int64{100, 50, 20, 10, 5}, d.Descending())
}

func TestDenominations_IsValidDeposit(t *testing.T) {
	d := DefaultDenominations()

	for _, amount := range []int64{5, 10, 20, 50, 100} {
		assert.True(t, d.IsValidDeposit(amount), "amount %d", amount)
	}
	for _, amount := range []int64{-5, 0, 1, 15, 25, 200} {
		assert.False(t, d.IsValidDeposit(amount), "amount %d", amount)
	}
}

func TestDenominations_ComputeChange(t *testing.T) {
	d := DefaultDenominations()

	tests := []struct {
		amount int64
		want   []int64
	}{
		{0, []int64{}},
		{5, []int64{5}},
		{35, []int64{20, 10, 5}},
		{90, []int64{50, 20, 20}},
		{285, []int64{100, 100, 50, 20, 10, 5}},
	}

	for _, tt := range tests {
		change := d.ComputeChange(tt.amount)
		assert.Equal(t, tt.want, change, "amount %d", tt.amount)

		var sum int64
		for _, coin := range change {
			sum += coin
		}
		assert.Equal(t, tt.amount, sum)
	}
}

func TestDenominations_ComputeChangePanics(t *testing.T) {
	d := DefaultDenominations()

	assert.Panics(t, func() { d.ComputeChange(3) })
	assert.Panics(t, func() { d.ComputeChange(-5) })
}

func TestDenominations_ChangeAlwaysExactForCustomSet(t *testing.T) {
	d, err := NewDenominations([]int64{10, 20, 50})
	require.NoError(t, err)
	assert.Equal(t, int64(10), d.Smallest())

	// Every surplus reachable with these coins and a price that is a multiple of the
	// smallest coin.
	for amount := int64(0); amount <= 500; amount += d.Smallest() {
		assert.NotPanics(t, func() { d.ComputeChange(amount) }, "amount %d", amount)
	}
}
