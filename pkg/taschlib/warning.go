package taschlib

import (
	"sort"
	"time"
)

// CrossedThresholds returns the pending thresholds (seconds before expiry)
// that have been reached with remaining time left, largest first. Several
// thresholds can cross on one tick when they are close together or the
// tick interval is coarse; each one is reported.
func CrossedThresholds(remaining time.Duration, pending []int) []int {
	var crossed []int
	for _, th := range pending {
		if remaining <= time.Duration(th)*time.Second {
			crossed = append(crossed, th)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(crossed)))
	return crossed
}
