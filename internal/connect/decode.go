package connect

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/timeline/internal/domain"
)

var (
	errMissingID        = errors.New("missing activityId")
	errMissingType      = errors.New("missing activityType")
	errMissingStartTime = errors.New("missing startTimeLocal")
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

type rawActivityType struct {
	TypeID       int64  `json:"typeId"`
	TypeKey      string `json:"typeKey"`
	ParentTypeID int64  `json:"parentTypeId"`
	IsHidden     bool   `json:"isHidden"`
	Restricted   bool   `json:"restricted"`
	Trimmable    bool   `json:"trimmable"`
}

// rawActivity lists the upstream fields kept on a record; everything else is dropped.
type rawActivity struct {
	ActivityID     *int64           `json:"activityId"`
	ActivityName   string           `json:"activityName"`
	StartTimeLocal string           `json:"startTimeLocal"`
	StartTimeGMT   string           `json:"startTimeGMT"`
	ActivityType   *rawActivityType `json:"activityType"`

	Distance                *float64 `json:"distance"`
	Duration                *float64 `json:"duration"`
	ElapsedDuration         *float64 `json:"elapsedDuration"`
	MovingDuration          *float64 `json:"movingDuration"`
	AverageSpeed            *float64 `json:"averageSpeed"`
	MaxSpeed                *float64 `json:"maxSpeed"`
	AverageHR               *float64 `json:"averageHR"`
	MaxHR                   *float64 `json:"maxHR"`
	AvgStrideLength         *float64 `json:"avgStrideLength"`
	AerobicTrainingEffect   *float64 `json:"aerobicTrainingEffect"`
	AnaerobicTrainingEffect *float64 `json:"anaerobicTrainingEffect"`
	HRTimeInZone1           *float64 `json:"hrTimeInZone_1"`
	HRTimeInZone2           *float64 `json:"hrTimeInZone_2"`
	HRTimeInZone3           *float64 `json:"hrTimeInZone_3"`
	HRTimeInZone4           *float64 `json:"hrTimeInZone_4"`
	HRTimeInZone5           *float64 `json:"hrTimeInZone_5"`

	SportTypeID *int64 `json:"sportTypeId"`
	DeviceID    *int64 `json:"deviceId"`
	HasImages   *bool  `json:"hasImages"`
	HasSplits   *bool  `json:"hasSplits"`
	TotalSets   *int   `json:"totalSets"`
	TotalReps   *int   `json:"totalReps"`
	ActiveSets  *int   `json:"activeSets"`

	SplitSummaries         []map[string]any `json:"splitSummaries"`
	SummarizedExerciseSets []map[string]any `json:"summarizedExerciseSets"`
}

// DecodeActivity turns one upstream timeline entry into a record. It either returns a
// complete record or an error, never a partially populated record.
func DecodeActivity(data []byte) (*domain.ActivityRecord, error) {
	var raw rawActivity
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	if raw.ActivityID == nil {
		return nil, errMissingID
	}
	if raw.ActivityType == nil {
		return nil, fmt.Errorf("activity %d: %w", *raw.ActivityID, errMissingType)
	}
	if strings.TrimSpace(raw.StartTimeLocal) == "" {
		return nil, fmt.Errorf("activity %d: %w", *raw.ActivityID, errMissingStartTime)
	}

	local, err := parseTimestamp(raw.StartTimeLocal)
	if err != nil {
		return nil, fmt.Errorf("activity %d startTimeLocal: %w", *raw.ActivityID, err)
	}
	var gmt time.Time
	if raw.StartTimeGMT != "" {
		if gmt, err = parseTimestamp(raw.StartTimeGMT); err != nil {
			return nil, fmt.Errorf("activity %d startTimeGMT: %w", *raw.ActivityID, err)
		}
	}

	return &domain.ActivityRecord{
		ID: *raw.ActivityID,
		ActivitySummary: domain.ActivitySummary{
			Name: raw.ActivityName,
			Type: domain.ActivityType{
				TypeID:       raw.ActivityType.TypeID,
				TypeKey:      raw.ActivityType.TypeKey,
				ParentTypeID: raw.ActivityType.ParentTypeID,
				IsHidden:     raw.ActivityType.IsHidden,
				Restricted:   raw.ActivityType.Restricted,
				Trimmable:    raw.ActivityType.Trimmable,
			},
			StartTimeLocal:          local,
			StartTimeGMT:            gmt,
			Distance:                raw.Distance,
			Duration:                raw.Duration,
			ElapsedDuration:         raw.ElapsedDuration,
			MovingDuration:          raw.MovingDuration,
			AverageSpeed:            raw.AverageSpeed,
			MaxSpeed:                raw.MaxSpeed,
			AverageHR:               raw.AverageHR,
			MaxHR:                   raw.MaxHR,
			AvgStrideLength:         raw.AvgStrideLength,
			AerobicTrainingEffect:   raw.AerobicTrainingEffect,
			AnaerobicTrainingEffect: raw.AnaerobicTrainingEffect,
			HRTimeInZones:           hrZones(raw),
			SportTypeID:             raw.SportTypeID,
			DeviceID:                raw.DeviceID,
			HasImages:               raw.HasImages,
			HasSplits:               raw.HasSplits,
			TotalSets:               raw.TotalSets,
			TotalReps:               raw.TotalReps,
			ActiveSets:              raw.ActiveSets,
			SplitSummaries:          raw.SplitSummaries,
			SummarizedExerciseSets:  raw.SummarizedExerciseSets,
		},
	}, nil
}

// DecodeActivities decodes a page; the first malformed entry fails the whole page.
func DecodeActivities(items []json.RawMessage) ([]*domain.ActivityRecord, error) {
	records := make([]*domain.ActivityRecord, 0, len(items))
	for _, item := range items {
		record, err := DecodeActivity(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// parseTimestamp reads upstream timestamps as wall clock values in UTC.
func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			if layout == time.RFC3339Nano {
				y, m, d := t.Date()
				return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

func hrZones(raw rawActivity) []float64 {
	zones := []*float64{raw.HRTimeInZone1, raw.HRTimeInZone2, raw.HRTimeInZone3, raw.HRTimeInZone4, raw.HRTimeInZone5}
	present := false
	for _, z := range zones {
		if z != nil {
			present = true
			break
		}
	}
	if !present {
		return nil
	}
	out := make([]float64, len(zones))
	for i, z := range zones {
		if z != nil {
			out[i] = *z
		}
	}
	return out
}
