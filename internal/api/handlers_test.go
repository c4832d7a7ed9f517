package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/club-leaderboard/internal/errors"
	"github.com/club-leaderboard/internal/leaderboard"
	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/types"
)

type fakeSyncService struct {
	started bool
	err     error
	calls   []string
}

func (f *fakeSyncService) TriggerSync(ctx context.Context, accountID string) (bool, error) {
	f.calls = append(f.calls, accountID)
	return f.started, f.err
}

type fakeAccountReader struct {
	accounts map[string]*models.Account
}

func (f *fakeAccountReader) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, apperrors.NewNotFoundError("account", id)
}

type fakeSegmentReader struct {
	segments []models.Segment
}

func (f *fakeSegmentReader) ListVisible(ctx context.Context) ([]models.Segment, error) {
	return f.segments, nil
}

func (f *fakeSegmentReader) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	for i := range f.segments {
		if f.segments[i].ID == id {
			return &f.segments[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("segment", id)
}

type fakeBoardReader struct {
	entries map[string][]models.LeaderboardEntry
	calls   int
}

func (f *fakeBoardReader) ListBySegment(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, error) {
	f.calls++
	return f.entries[segmentID], nil
}

type fakeCrownReader struct {
	crowns []models.Crown
}

func (f *fakeCrownReader) ListByAccount(ctx context.Context, accountID string) ([]models.Crown, error) {
	return f.crowns, nil
}

type fakeHighlightReader struct {
	highlights []models.Highlight
}

func (f *fakeHighlightReader) ListByAccount(ctx context.Context, accountID string) ([]models.Highlight, error) {
	return f.highlights, nil
}

type fakeBoardCache struct {
	data map[string][]models.LeaderboardEntry
	sets int
}

func (f *fakeBoardCache) GetLeaderboard(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, bool, error) {
	entries, ok := f.data[segmentID]
	return entries, ok, nil
}

func (f *fakeBoardCache) SetLeaderboard(ctx context.Context, segmentID string, entries []models.LeaderboardEntry) error {
	f.sets++
	f.data[segmentID] = entries
	return nil
}

type testDeps struct {
	sync       *fakeSyncService
	accounts   *fakeAccountReader
	segments   *fakeSegmentReader
	board      *fakeBoardReader
	crowns     *fakeCrownReader
	highlights *fakeHighlightReader
	cache      *fakeBoardCache
}

func createTestServer() (*Server, *testDeps) {
	deps := &testDeps{
		sync:       &fakeSyncService{started: true},
		accounts:   &fakeAccountReader{accounts: map[string]*models.Account{}},
		segments:   &fakeSegmentReader{},
		board:      &fakeBoardReader{entries: map[string][]models.LeaderboardEntry{}},
		crowns:     &fakeCrownReader{},
		highlights: &fakeHighlightReader{},
		cache:      &fakeBoardCache{data: map[string][]models.LeaderboardEntry{}},
	}

	server := NewServer(
		&ServerConfig{Host: "localhost", Port: "0"},
		&ServerDeps{
			SyncService: deps.sync,
			Accounts:    deps.accounts,
			Segments:    deps.segments,
			Board:       deps.board,
			Crowns:      deps.crowns,
			Highlights:  deps.highlights,
			Cache:       deps.cache,
		},
	)
	return server, deps
}

func signedInRequest(method, path string, accountID string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: accountID})
	return req
}

func boardEntry(id, name string, seconds, rank int, status types.EntryStatus, accountID *string) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		ID:          id,
		SegmentID:   "hawk-hill",
		Rank:        rank,
		RiderName:   &name,
		TimeSeconds: seconds,
		Status:      status,
		AccountID:   accountID,
	}
}

func TestHealth(t *testing.T) {
	server, _ := createTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestTriggerSync_NoSession(t *testing.T) {
	server, deps := createTestServer()

	req := httptest.NewRequest("POST", "/api/sync", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if len(deps.sync.calls) != 0 {
		t.Errorf("Expected no sync trigger, got %d", len(deps.sync.calls))
	}
}

func TestTriggerSync_Started(t *testing.T) {
	server, deps := createTestServer()

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, signedInRequest("POST", "/api/sync", "acct-1"))

	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", w.Code)
	}
	if len(deps.sync.calls) != 1 || deps.sync.calls[0] != "acct-1" {
		t.Errorf("Expected sync triggered for acct-1, got %v", deps.sync.calls)
	}
}

func TestTriggerSync_AlreadyRunning(t *testing.T) {
	server, deps := createTestServer()
	deps.sync.started = false

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, signedInRequest("POST", "/api/sync", "acct-1"))

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "SYNC_IN_PROGRESS" {
		t.Errorf("Expected code SYNC_IN_PROGRESS, got %s", resp.Error.Code)
	}
}

func TestGetMe(t *testing.T) {
	server, deps := createTestServer()
	deps.accounts.accounts["acct-1"] = &models.Account{
		ID:         "acct-1",
		Name:       "John Smith",
		SyncStatus: types.SyncComplete,
	}
	deps.crowns.crowns = []models.Crown{{ID: "c1", AccountID: "acct-1", SegmentName: "Hawk Hill"}}
	deps.highlights.highlights = []models.Highlight{{ID: "h1", AccountID: "acct-1", Category: "longest_ride"}}

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, signedInRequest("GET", "/api/user/me", "acct-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp meResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Account == nil || resp.Account.ID != "acct-1" {
		t.Errorf("Expected account acct-1, got %+v", resp.Account)
	}
	if len(resp.Crowns) != 1 || len(resp.Highlights) != 1 {
		t.Errorf("Expected 1 crown and 1 highlight, got %d and %d", len(resp.Crowns), len(resp.Highlights))
	}
}

func TestGetMe_UnknownAccount(t *testing.T) {
	server, _ := createTestServer()

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, signedInRequest("GET", "/api/user/me", "missing"))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListSegments_TopTenDeduplicated(t *testing.T) {
	server, deps := createTestServer()
	deps.segments.segments = []models.Segment{{ID: "hawk-hill", Name: "Hawk Hill", Visible: true}}

	// Twelve distinct riders plus a ghost duplicate of the fastest one.
	entries := []models.LeaderboardEntry{
		boardEntry("dup", "Rider 1", 395, 0, types.EntryGhost, nil),
	}
	for i := 1; i <= 12; i++ {
		entries = append(entries, boardEntry(
			fmt.Sprintf("e%d", i), fmt.Sprintf("Rider %d", i), 400+i*10, i, types.EntryVerified, nil,
		))
	}
	deps.board.entries["hawk-hill"] = entries

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/segments", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Segments []segmentWithBoard `json:"segments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(resp.Segments))
	}

	topTen := resp.Segments[0].TopTen
	if len(topTen) != 10 {
		t.Fatalf("Expected top ten capped at 10, got %d", len(topTen))
	}
	// The verified duplicate wins over the faster ghost, so Rider 1
	// appears once, at their verified time.
	if topTen[0].ID != "e1" || topTen[0].TimeSeconds != 410 {
		t.Errorf("Expected verified e1 at 410 first, got %s at %d", topTen[0].ID, topTen[0].TimeSeconds)
	}
}

func TestGetLeaderboard_UnknownSegment(t *testing.T) {
	server, _ := createTestServer()

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/segments/nope/leaderboard", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetLeaderboard_ServesFromCacheOnSecondRead(t *testing.T) {
	server, deps := createTestServer()
	deps.segments.segments = []models.Segment{{ID: "hawk-hill", Name: "Hawk Hill", Visible: true}}
	deps.board.entries["hawk-hill"] = []models.LeaderboardEntry{
		boardEntry("e1", "Rider 1", 380, 1, types.EntryVerified, nil),
	}

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/segments/hawk-hill/leaderboard", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i, w.Code)
		}
	}

	if deps.board.calls != 1 {
		t.Errorf("Expected 1 repository read, got %d", deps.board.calls)
	}
	if deps.cache.sets != 1 {
		t.Errorf("Expected 1 cache write, got %d", deps.cache.sets)
	}
}

func TestFindMe_NoSession(t *testing.T) {
	server, _ := createTestServer()

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/segments/hawk-hill/findme", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestFindMe_InvalidContext(t *testing.T) {
	server, deps := createTestServer()
	deps.segments.segments = []models.Segment{{ID: "hawk-hill", Name: "Hawk Hill", Visible: true}}

	for _, raw := range []string{"abc", "-1", "1.5"} {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, signedInRequest("GET", "/api/segments/hawk-hill/findme?context="+raw, "acct-1"))

		if w.Code != http.StatusBadRequest {
			t.Errorf("context=%s: expected status 400, got %d", raw, w.Code)
		}
	}
}

func TestFindMe(t *testing.T) {
	server, deps := createTestServer()
	deps.segments.segments = []models.Segment{{ID: "hawk-hill", Name: "Hawk Hill", Visible: true}}

	me := "acct-1"
	deps.board.entries["hawk-hill"] = []models.LeaderboardEntry{
		boardEntry("e1", "Rider 1", 380, 1, types.EntryVerified, nil),
		boardEntry("e2", "John Smith", 390, 2, types.EntryVerified, &me),
		boardEntry("e3", "Rider 3", 400, 3, types.EntryVerified, nil),
	}

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, signedInRequest("GET", "/api/segments/hawk-hill/findme?context=1", "acct-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var view leaderboard.FindMeView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !view.Found {
		t.Fatal("Expected the athlete to be found")
	}
	if view.Rank != 2 {
		t.Errorf("Expected rank 2, got %d", view.Rank)
	}
	if view.TotalRiders != 3 {
		t.Errorf("Expected 3 total riders, got %d", view.TotalRiders)
	}
	if len(view.Entries) != 3 {
		t.Errorf("Expected a 3-entry window, got %d", len(view.Entries))
	}
}
