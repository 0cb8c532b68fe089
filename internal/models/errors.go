package models

import "errors"

// Storage errors shared by every repository implementation.
var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record already exists")
	ErrVersionConflict = errors.New("record was modified concurrently")
)
