// Package utils provides utility functions for the application.
package utils

import "math"

// ToPtr returns a pointer to the given value
func ToPtr[T any](v T) *T {
	return &v
}

// IsTrue reports whether a bool pointer is non-nil and true
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// Round1 rounds a float to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
