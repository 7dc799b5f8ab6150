package taschlib

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// FormatMinSec renders seconds as MM:SS; minutes are not wrapped at 60.
func FormatMinSec(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders a human readable length such as "1 hour 30
// minutes", or "1h 30m" when short is set. Seconds are dropped once the
// length reaches an hour.
func FormatDuration(seconds int, short bool) string {
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	var parts []string
	if short {
		if h > 0 {
			parts = append(parts, fmt.Sprintf("%dh", h))
		}
		if m > 0 {
			parts = append(parts, fmt.Sprintf("%dm", m))
		}
		if s > 0 && h == 0 {
			parts = append(parts, fmt.Sprintf("%ds", s))
		}
		if len(parts) == 0 {
			return "0s"
		}
		return strings.Join(parts, " ")
	}
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 && h == 0 {
		parts = append(parts, plural(s, "second"))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, " ")
}

// FriendlyRemaining describes time left the way a countdown announces it.
func FriendlyRemaining(seconds int) string {
	switch {
	case seconds <= 0:
		return "Time's up!"
	case seconds < 60:
		return plural(seconds, "second") + " left"
	case seconds < 3600:
		return plural(seconds/60, "minute") + " left"
	}
	h, m := seconds/3600, seconds%3600/60
	if m > 0 {
		return plural(h, "hour") + " " + plural(m, "minute") + " left"
	}
	return plural(h, "hour") + " left"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// CeilSeconds rounds d up to whole seconds, so a countdown shows 1 until
// it actually reaches zero.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// ParseSeconds accepts a plain number of seconds, a Go duration ("15m",
// "1h30m") or a clock value ("MM:SS", "HH:MM:SS").
func ParseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
		total := 0
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid clock value %q", s)
			}
			total = total*60 + n
		}
		return total, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("duration %q is not a whole number of seconds", s)
	}
	return int(d / time.Second), nil
}
