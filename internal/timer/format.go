package timer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// Format renders seconds as h:mm:ss, or m:ss below one hour.
// Fractions are truncated.
func Format(seconds float64) string {
	total := int64(math.Floor(math.Max(seconds, 0)))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatHM renders seconds as h:mm, used for totals.
func FormatHM(seconds float64) string {
	total := int64(math.Floor(math.Max(seconds, 0)))
	return fmt.Sprintf("%d:%02d", total/3600, (total%3600)/60)
}

// Parse reads a manual time entry in h:mm:ss or mm:ss form.
func Parse(text string) (float64, error) {
	input := text
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, task.InvalidTime(input)
	}

	nums := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, task.InvalidTime(input)
		}
		nums[i] = n
	}

	// Every field after the leading one is a sexagesimal digit.
	for _, n := range nums[1:] {
		if n > 59 {
			return 0, task.InvalidTime(input)
		}
	}

	var total int64
	for _, n := range nums {
		if total > (math.MaxInt64-n)/60 {
			return 0, task.InvalidTime(input)
		}
		total = total*60 + n
	}
	return float64(total), nil
}
