package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

const chartWidth = 20

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

// renderChart draws a per-day histogram of the weekly stats, scaled to
// the busiest day.
func renderChart(stats []storage.DayCount) string {
	maxCount := 0
	for _, d := range stats {
		if d.Count > maxCount {
			maxCount = d.Count
		}
	}

	lines := make([]string, 0, len(stats))
	for _, d := range stats {
		barLen := 0
		if maxCount > 0 {
			barLen = d.Count * chartWidth / maxCount
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %s %d",
			weekdayShort[d.Day.Weekday()],
			d.Day.Format("02.01"),
			strings.Repeat("█", barLen),
			d.Count))
	}
	return strings.Join(lines, "\n")
}
