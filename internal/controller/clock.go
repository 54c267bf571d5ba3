package controller

import (
	"fmt"
	"time"
)

// FormatClock renders d as zero-padded MM:SS, truncated to whole seconds.
// Minutes are not wrapped into hours.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
