package media

import (
	"fmt"
	"strconv"
	"time"
)

// DurationString renders a duration as HH:MM:SS, or "Unknown" when the
// manifest did not report one (the degraded path never does).
func DurationString(d time.Duration) string {
	if d <= 0 {
		return "Unknown"
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// ViewCountString renders a view count with thousands separators, or
// "Unknown" when absent.
func ViewCountString(views int64) string {
	if views <= 0 {
		return "Unknown"
	}
	raw := strconv.FormatInt(views, 10)
	var out []byte
	for i, digit := range []byte(raw) {
		if i > 0 && (len(raw)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digit)
	}
	return string(out)
}
