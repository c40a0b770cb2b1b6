// Package domain defines the records exchanged between the upstream timeline and the
// aggregation engine.
package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ActivityType classifies an activity as reported by the upstream timeline.
type ActivityType struct {
	TypeID       int64  `json:"type_id"`
	TypeKey      string `json:"type_key"`
	ParentTypeID int64  `json:"parent_type_id"`
	IsHidden     bool   `json:"is_hidden"`
	Restricted   bool   `json:"restricted"`
	Trimmable    bool   `json:"trimmable"`
}

// ActivitySummary carries every descriptive field of a timeline entry. Two entries
// recorded during the same joint session share an identical summary.
type ActivitySummary struct {
	Name           string       `json:"activity_name"`
	Type           ActivityType `json:"activity_type"`
	StartTimeLocal time.Time    `json:"start_time_local"`
	StartTimeGMT   time.Time    `json:"start_time_gmt"`

	Distance        *float64 `json:"distance,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
	ElapsedDuration *float64 `json:"elapsed_duration,omitempty"`
	MovingDuration  *float64 `json:"moving_duration,omitempty"`
	AverageSpeed    *float64 `json:"average_speed,omitempty"`
	MaxSpeed        *float64 `json:"max_speed,omitempty"`
	AverageHR       *float64 `json:"average_hr,omitempty"`
	MaxHR           *float64 `json:"max_hr,omitempty"`
	AvgStrideLength *float64 `json:"avg_stride_length,omitempty"`

	AerobicTrainingEffect   *float64  `json:"aerobic_training_effect,omitempty"`
	AnaerobicTrainingEffect *float64  `json:"anaerobic_training_effect,omitempty"`
	HRTimeInZones           []float64 `json:"hr_time_in_zones,omitempty"`

	SportTypeID *int64 `json:"sport_type_id,omitempty"`
	DeviceID    *int64 `json:"device_id,omitempty"`
	HasImages   *bool  `json:"has_images,omitempty"`
	HasSplits   *bool  `json:"has_splits,omitempty"`
	TotalSets   *int   `json:"total_sets,omitempty"`
	TotalReps   *int   `json:"total_reps,omitempty"`
	ActiveSets  *int   `json:"active_sets,omitempty"`

	SplitSummaries         []map[string]any `json:"split_summaries,omitempty"`
	SummarizedExerciseSets []map[string]any `json:"summarized_exercise_sets,omitempty"`
}

// ActivityRecord is one timeline entry owned by a single account.
type ActivityRecord struct {
	ID int64 `json:"activity_id"`
	ActivitySummary
	Similar SimilaritySet `json:"similar_activities"`
}

var summaryOptions = []cmp.Option{cmpopts.EquateEmpty()}

// Weekday derives the day of week from the local start timestamp.
func (r *ActivityRecord) Weekday() time.Weekday {
	return r.StartTimeLocal.Weekday()
}

// LocalDate returns the calendar date of the local start timestamp.
func (r *ActivityRecord) LocalDate() time.Time {
	return DateOf(r.StartTimeLocal)
}

// SameSession reports whether both records describe the same session: every field
// except identity and the similarity set must match.
func (r *ActivityRecord) SameSession(other *ActivityRecord) bool {
	if r == nil || other == nil {
		return false
	}
	return cmp.Equal(r.ActivitySummary, other.ActivitySummary, summaryOptions...)
}

// MarshalJSON adds the derived weekday to the serialised record.
func (r *ActivityRecord) MarshalJSON() ([]byte, error) {
	type plain ActivityRecord
	return json.Marshal(struct {
		*plain
		Weekday string `json:"weekday"`
	}{plain: (*plain)(r), Weekday: r.Weekday().String()})
}

func (r *ActivityRecord) addSimilar(id int64) {
	if r.Similar == nil {
		r.Similar = make(SimilaritySet)
	}
	r.Similar[id] = struct{}{}
}

// LinkSimilar records a in b's similarity set and b in a's, in one step.
func LinkSimilar(a, b *ActivityRecord) {
	a.addSimilar(b.ID)
	b.addSimilar(a.ID)
}

// SimilaritySet holds the identities of records judged to be the same joint session.
// It references records by identity only.
type SimilaritySet map[int64]struct{}

// Has reports membership. A nil set is empty.
func (s SimilaritySet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s SimilaritySet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s SimilaritySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of identities.
func (s *SimilaritySet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(SimilaritySet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

// OwnedActivity pairs a record with the profile that owns it.
type OwnedActivity struct {
	Profile Profile         `json:"profile"`
	Record  *ActivityRecord `json:"details"`
}
