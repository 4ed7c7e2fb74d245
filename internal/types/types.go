// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Mountain is a single row of the mountains table.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     controls the key used in request and response bodies.
//  2. validate:"..." rules checked by go-playground/validator. "required"
//     means the field must be present and non-zero, so "" and a height of
//     0 are rejected the same way as a missing key.
type Mountain struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"     validate:"required"`
	Height   float64 `json:"height"   validate:"required"`
	Location string  `json:"location" validate:"required"`
}
