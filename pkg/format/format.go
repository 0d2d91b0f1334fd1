package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

const (
	neverRefreshed = "never"
	zeroLatency    = "0ms"
)

// Latency formats a request latency, millisecond precision below a second
func Latency(d time.Duration) string {
	if d <= 0 {
		return zeroLatency
	}
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	ms := d.Milliseconds()
	if ms == 0 {
		return "<1ms"
	}
	return strconv.FormatInt(ms, 10) + "ms"
}

// TimeAgo describes t relative to now, e.g. "About a minute ago"
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return neverRefreshed
	}
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}
	return units.HumanDuration(d) + " ago"
}

// Shown summarises a capped result, "3 runs" or "20 of 3141 runs"
func Shown(shown, total int) string {
	noun := "runs"
	if total == 1 && shown == 1 {
		noun = "run"
	}
	if total <= shown {
		return fmt.Sprintf("%d %s", shown, noun)
	}
	return fmt.Sprintf("%d of %d %s", shown, total, noun)
}

// Percentage of part in whole, "0%" when whole is zero
func Percentage(part, whole int64) string {
	if whole == 0 || part == 0 {
		return "0%"
	}
	if part == whole {
		return "100%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}
