package timeline

import (
	"slices"

	"example.com/timeline/internal/domain"
)

// Link is a pair of activities newly judged to be one joint session.
type Link struct {
	A domain.OwnedActivity
	B domain.OwnedActivity
}

// Match links every pair of structurally identical records owned by different profiles
// within one weekday bucket, then sorts the bucket by local start time. Links are
// symmetric and running Match again adds nothing. The newly created links are returned.
func Match(bucket []domain.OwnedActivity) []Link {
	var links []Link
	for _, x := range bucket {
		for _, y := range bucket {
			if x.Record == nil || y.Record == nil {
				continue
			}
			if x.Profile.DisplayName == y.Profile.DisplayName {
				continue
			}
			// the same upstream record reached through two profiles is not a joint session
			if x.Record.ID == y.Record.ID {
				continue
			}
			if x.Record.Similar.Has(y.Record.ID) {
				continue
			}
			if x.Record.SameSession(y.Record) {
				domain.LinkSimilar(x.Record, y.Record)
				links = append(links, Link{A: x, B: y})
			}
		}
	}
	recordLinks(len(links))

	slices.SortStableFunc(bucket, func(a, b domain.OwnedActivity) int {
		return a.Record.StartTimeLocal.Compare(b.Record.StartTimeLocal)
	})
	return links
}
