package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/club-leaderboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&ClientConfig{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		BaseURL:       server.URL,
		TokenURL:      server.URL + "/oauth/token",
		CourtesyDelay: time.Millisecond,
	})
	return client, server
}

func TestGetSegmentEfforts(t *testing.T) {
	var gotQuery map[string]string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/segment_efforts", r.URL.Path)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}

		json.NewEncoder(w).Encode([]SegmentEffortData{
			{ID: 42, ElapsedTime: 380, StartDate: "2015-06-12T08:00:00Z"},
		})
	}))

	start := time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	efforts, err := client.GetSegmentEfforts(context.Background(), "token-1", 229781, EffortPage{
		PerPage:   100,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	require.Len(t, efforts, 1)
	assert.Equal(t, int64(42), efforts[0].ID)

	assert.Equal(t, "229781", gotQuery["segment_id"])
	assert.Equal(t, "100", gotQuery["per_page"])
	assert.Equal(t, "1", gotQuery["page"])
	assert.Equal(t, "2008-01-01T00:00:00Z", gotQuery["start_date_local"])
	assert.Equal(t, "2020-01-01T00:00:00Z", gotQuery["end_date_local"])
}

func TestGetActivities_Paging(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/athlete/activities", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.NotEmpty(t, r.URL.Query().Get("after"))
		assert.NotEmpty(t, r.URL.Query().Get("before"))
		json.NewEncoder(w).Encode([]ActivityData{{ID: 7, Name: "Morning Ride"}})
	}))

	activities, err := client.GetActivities(context.Background(), "token-1", ActivityPage{
		Page:    3,
		PerPage: 100,
		After:   1199145600,
		Before:  1577836800,
	})
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Morning Ride", activities[0].Name)
}

func TestDoRequest_RateLimited(t *testing.T) {
	resetAt := time.Now().Add(90 * time.Second).Unix()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt))
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.GetAthleteKoms(context.Background(), "token-1", 77, 1, 100)
	require.Error(t, err)
	require.True(t, apperrors.IsRateLimit(err))
	assert.Equal(t, resetAt, apperrors.RateLimitResetAt(err).Unix())
}

func TestDoRequest_ServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.GetAthlete(context.Background(), "token-1")
	require.Error(t, err)
	assert.False(t, apperrors.IsRateLimit(err))
	assert.False(t, apperrors.IsFatalAuth(err))
}

func TestRefreshToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    21600,
		})
	}))

	tokens, err := client.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
	assert.Greater(t, tokens.ExpiresAt, time.Now().Unix())
}

func TestRefreshToken_FailureIsFatalAuth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`)) //nolint:errcheck
	}))

	_, err := client.RefreshToken(context.Background(), "revoked")
	require.Error(t, err)
	assert.True(t, apperrors.IsFatalAuth(err))
}
