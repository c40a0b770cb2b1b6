package timeline

import (
	"time"

	"example.com/timeline/internal/domain"
)

// Weekdays lists the buckets in display order, Monday first.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Bucket partitions records by the weekday of their local start time. All seven weekdays
// are present in the result, possibly empty.
func Bucket(owned []domain.OwnedActivity) map[time.Weekday][]domain.OwnedActivity {
	buckets := make(map[time.Weekday][]domain.OwnedActivity, len(Weekdays))
	for _, wd := range Weekdays {
		buckets[wd] = []domain.OwnedActivity{}
	}
	for _, entry := range owned {
		if entry.Record == nil {
			continue
		}
		wd := entry.Record.Weekday()
		buckets[wd] = append(buckets[wd], entry)
	}
	return buckets
}
