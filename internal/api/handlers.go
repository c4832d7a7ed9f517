package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/club-leaderboard/internal/leaderboard"
	"github.com/club-leaderboard/internal/models"
	"github.com/gorilla/mux"
)

// sessionCookie names the cookie carrying the signed-in account id.
const sessionCookie = "mc_session"

// sessionAccountID extracts the account id from the session cookie.
func sessionAccountID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTriggerSync starts a pipeline run for the signed-in account.
// Returns 202 when a run starts and 409 when one is already in flight.
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	accountID, ok := sessionAccountID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign in required", nil)
		return
	}

	started, err := s.syncService.TriggerSync(r.Context(), accountID)
	if err != nil {
		respondCategorized(w, err)
		return
	}
	if !started {
		respondError(w, http.StatusConflict, "SYNC_IN_PROGRESS", "a sync is already running for this account", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// meResponse is the signed-in account view: profile, sync state, and the
// account's crowns and highlights.
type meResponse struct {
	Account    *models.Account    `json:"account"`
	Crowns     []models.Crown     `json:"crowns"`
	Highlights []models.Highlight `json:"highlights"`
}

// handleGetMe returns the signed-in account with its sync progress snapshot.
// Pollers call this during a run to render live progress.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := sessionAccountID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign in required", nil)
		return
	}

	account, err := s.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	crowns, err := s.crowns.ListByAccount(r.Context(), accountID)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	highlights, err := s.highlights.ListByAccount(r.Context(), accountID)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, meResponse{
		Account:    account,
		Crowns:     crowns,
		Highlights: highlights,
	})
}

// segmentWithBoard pairs a catalog segment with its display top ten.
type segmentWithBoard struct {
	models.Segment
	TopTen []models.LeaderboardEntry `json:"topTen"`
}

// handleListSegments returns the visible segment catalog, each segment with
// its display-deduplicated top ten.
func (s *Server) handleListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := s.segments.ListVisible(r.Context())
	if err != nil {
		respondCategorized(w, err)
		return
	}

	out := make([]segmentWithBoard, 0, len(segments))
	for _, segment := range segments {
		display, err := s.displayBoard(r, segment.ID)
		if err != nil {
			respondCategorized(w, err)
			return
		}
		if len(display) > 10 {
			display = display[:10]
		}
		out = append(out, segmentWithBoard{Segment: segment, TopTen: display})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"segments": out})
}

// displayBoard loads a segment's display-filtered board, via cache when fresh.
func (s *Server) displayBoard(r *http.Request, segmentID string) ([]models.LeaderboardEntry, error) {
	if s.cache != nil {
		if entries, hit, err := s.cache.GetLeaderboard(r.Context(), segmentID); err == nil && hit {
			return entries, nil
		}
	}

	entries, err := s.board.ListBySegment(r.Context(), segmentID)
	if err != nil {
		return nil, err
	}
	display := leaderboard.DedupForDisplay(entries)

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(r.Context(), segmentID, display); err != nil {
			log.Printf("[API] leaderboard cache write for %s failed: %v", segmentID, err)
		}
	}
	return display, nil
}

// leaderboardResponse pairs a segment with its display-filtered entries.
type leaderboardResponse struct {
	Segment *models.Segment           `json:"segment"`
	Entries []models.LeaderboardEntry `json:"entries"`
}

// handleGetLeaderboard returns a segment's leaderboard, deduplicated for
// display and served from cache when fresh.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	segmentID := mux.Vars(r)["id"]

	segment, err := s.segments.GetByID(r.Context(), segmentID)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	display, err := s.displayBoard(r, segmentID)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, leaderboardResponse{Segment: segment, Entries: display})
}

// defaultFindMeContext is the window size on each side of the athlete.
const defaultFindMeContext = 5

// handleFindMe returns the signed-in athlete's position on a segment with a
// window of surrounding entries.
func (s *Server) handleFindMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := sessionAccountID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign in required", nil)
		return
	}

	segmentID := mux.Vars(r)["id"]
	if _, err := s.segments.GetByID(r.Context(), segmentID); err != nil {
		respondCategorized(w, err)
		return
	}

	contextSize := defaultFindMeContext
	if raw := r.URL.Query().Get("context"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "context must be a non-negative integer", nil)
			return
		}
		contextSize = parsed
	}

	entries, err := s.board.ListBySegment(r.Context(), segmentID)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	view := leaderboard.BuildFindMeView(entries, accountID, contextSize)
	respondJSON(w, http.StatusOK, view)
}
