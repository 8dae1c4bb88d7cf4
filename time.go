package accounts

import "time"

// IsWithinThresholdPeriod checks if the given time is within the threshold.
// The boundary is inclusive: a timestamp exactly one period old still counts
// as inside it.
func IsWithinThresholdPeriod(t time.Time, pattern string) (bool, error) {
	return IsWithinThresholdPeriodAt(t, pattern, time.Now())
}

// IsWithinThresholdPeriodAt is IsWithinThresholdPeriod against an explicit
// reference instant, so expiry windows can be tested without a real clock.
func IsWithinThresholdPeriodAt(t time.Time, pattern string, now time.Time) (bool, error) {
	duration, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	threshold := now.Add(-duration)
	return !t.Before(threshold), nil
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(t time.Time, pattern string) (bool, error) {
	valid, err := IsWithinThresholdPeriod(t, pattern)
	if err != nil {
		return false, err
	}

	return !valid, nil
}
