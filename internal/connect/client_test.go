package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/timeline/internal/domain"
)

func activityJSON(id int64, startLocal string) map[string]any {
	return map[string]any{
		"activityId":     id,
		"activityName":   "Morning Run",
		"startTimeLocal": startLocal,
		"startTimeGMT":   startLocal,
		"activityType":   map[string]any{"typeId": 1, "typeKey": "running", "parentTypeId": 17},
		"distance":       5000.0,
		"duration":       1500.0,
		"ownerId":        99,
	}
}

func TestSearchActivitiesSendsFilters(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewEncoder(w).Encode([]any{activityJSON(1, "2025-03-18 07:00:00")})
	}))
	defer srv.Close()

	client := New(srv.URL, WithToken("secret"), WithTimeout(time.Second))
	window := domain.NewWindow(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC))

	records, err := client.SearchActivities(context.Background(), 40, 20, window, "running")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(1), records[0].ID)
	require.Equal(t, "running", records[0].Type.TypeKey)
	require.Equal(t, time.Date(2025, 3, 18, 7, 0, 0, 0, time.UTC), records[0].StartTimeLocal)

	require.Equal(t, pathSearchActivities, got.URL.Path)
	require.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	query := got.URL.Query()
	require.Equal(t, "40", query.Get("start"))
	require.Equal(t, "20", query.Get("limit"))
	require.Equal(t, "2025-03-17", query.Get("startDate"))
	require.Equal(t, "2025-03-23", query.Get("endDate"))
	require.Equal(t, "running", query.Get("activityType"))
}

func TestSearchActivitiesOmitsEmptyActivityType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("activityType"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	records, err := New(srv.URL).SearchActivities(context.Background(), 0, 20, domain.WeekOf(time.Now()), "")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestConnectionActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activitylist-service/activities/bob", r.URL.Path)
		require.Equal(t, "20", r.URL.Query().Get("start"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"activityList": []any{
				activityJSON(3, "2025-03-19T18:30:00"),
				activityJSON(2, "2025-03-18T07:00:00.0"),
			},
		})
	}))
	defer srv.Close()

	records, err := New(srv.URL).ConnectionActivities(context.Background(), "bob", 20, 20)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, int64(3), records[0].ID)
	require.Equal(t, time.Wednesday, records[0].Weekday())
}

func TestConnectionActivitiesMalformedPageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"activityList":[{"activityName":"no id"}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ConnectionActivities(context.Background(), "bob", 0, 20)
	require.ErrorIs(t, err, errMissingID)
}

func TestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"expired"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ConnectionActivities(context.Background(), "bob", 0, 20)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "expired")
	require.True(t, IsUnauthorized(err))
	require.False(t, IsUnauthorized(fmt.Errorf("wrapped: %w", &StatusError{StatusCode: http.StatusInternalServerError})))
}

func TestEmptyBodyIsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	records, err := New(srv.URL).ConnectionActivities(context.Background(), "bob", 0, 20)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSelf(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathSocialProfile:
			_, _ = w.Write([]byte(`{"displayName":"alice","fullName":"Alice A","location":"Madrid","profileImageUrlMedium":"https://img/alice.png","userRoles":["x"]}`))
		case pathUserSettings:
			_, _ = w.Write([]byte(`{"userData":{"measurementSystem":"metric"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	profile, err := New(srv.URL).Self(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Profile{
		DisplayName:     "alice",
		FullName:        "Alice A",
		UnitSystem:      "metric",
		Location:        "Madrid",
		ProfileImageURL: "https://img/alice.png",
	}, profile)
}

func TestConnectionsPagesUntilShortPage(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("start"))
		offsets = append(offsets, offset)

		count := directoryPageSize
		if offset > 0 {
			count = 3
		}
		users := make([]map[string]string, 0, count)
		for i := 0; i < count; i++ {
			users = append(users, map[string]string{"displayName": fmt.Sprintf("user-%d", offset+i)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"userConnections": users})
	}))
	defer srv.Close()

	profiles, err := New(srv.URL).Connections(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, directoryPageSize+3)
	require.Equal(t, []int{0, directoryPageSize}, offsets)
	require.Equal(t, "user-0", profiles[0].DisplayName)
}
