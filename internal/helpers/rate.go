package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// NewOnceAMinute returns a limiter whose Do runs the first call and then at most once per minute.
func NewOnceAMinute() *rate.Sometimes {
	return &rate.Sometimes{
		Interval: time.Minute,
	}
}
