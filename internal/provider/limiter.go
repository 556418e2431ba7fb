// Package provider holds the remote nutrition data sources.
package provider

import (
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when a source has no product for a barcode.
var ErrNotFound = errors.New("product not found")

// NewLimiter allows perMinute requests per minute with a burst of one.
// A non-positive rate disables limiting.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
