// Package strava provides the client for the external fitness-tracking API.
// All external calls go through this package.
//
// Rate limits: 200 requests per 15 min, 2000 per day. A 429 is surfaced as a
// retryable rate-limit error carrying the advertised reset time; a courtesy
// delay is inserted between consecutive requests even absent a 429.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/club-leaderboard/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://www.strava.com/api/v3"
	defaultTokenURL = "https://www.strava.com/oauth/token"
)

// Tokens is the credential pair returned by token exchange and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // Unix timestamp
}

// Client talks to the external fitness-tracking API.
type Client struct {
	oauth      *oauth2.Config
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter // courtesy pacing between consecutive fetches
}

// ClientConfig holds client construction options.
type ClientConfig struct {
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	CourtesyDelay  time.Duration
	// BaseURL and TokenURL override the production endpoints in tests.
	BaseURL  string
	TokenURL string
}

// NewClient creates a new API client.
func NewClient(cfg *ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	courtesyDelay := cfg.CourtesyDelay
	if courtesyDelay == 0 {
		courtesyDelay = 100 * time.Millisecond
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(courtesyDelay), 1),
	}
}

// ExchangeToken exchanges an OAuth authorization code for a token pair.
func (c *Client) ExchangeToken(ctx context.Context, code string) (*Tokens, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.NewFatalAuthError("token exchange failed", err)
	}
	return fromOAuthToken(tok), nil
}

// RefreshToken exchanges a refresh token for a fresh token pair. Failure is
// fatal to a sync run.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, apperrors.NewFatalAuthError("token refresh failed", err)
	}
	return fromOAuthToken(tok), nil
}

func fromOAuthToken(tok *oauth2.Token) *Tokens {
	tokens := &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		tokens.ExpiresAt = tok.Expiry.Unix()
	}
	return tokens
}

// doRequest performs one authenticated GET against the API, honoring the
// courtesy limiter and translating 429 into a rate-limit error.
func (c *Client) doRequest(ctx context.Context, accessToken, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u = fmt.Sprintf("%s?%s", u, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewStageFetchError(endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewRateLimitError(parseResetTime(resp))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewStageFetchError(endpoint,
			fmt.Errorf("API error: status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewStageFetchError(endpoint, err)
	}

	return body, nil
}

// parseResetTime extracts the advertised rate-limit reset time from the
// response. Falls back to Retry-After seconds, then to zero.
func parseResetTime(resp *http.Response) time.Time {
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(epoch, 0)
		}
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Now().Add(time.Duration(secs) * time.Second)
		}
	}
	return time.Time{}
}

// EffortPage holds paging options for segment effort queries.
type EffortPage struct {
	Page      int
	PerPage   int
	StartDate time.Time
	EndDate   time.Time
}

// GetSegmentEfforts fetches the authenticated athlete's attempts on a
// segment within a date window.
func (c *Client) GetSegmentEfforts(ctx context.Context, accessToken string, segmentID int64, opts EffortPage) ([]SegmentEffortData, error) {
	params := url.Values{}
	params.Set("segment_id", strconv.FormatInt(segmentID, 10))
	params.Set("page", strconv.Itoa(orDefault(opts.Page, 1)))
	params.Set("per_page", strconv.Itoa(orDefault(opts.PerPage, 100)))
	if !opts.StartDate.IsZero() {
		params.Set("start_date_local", opts.StartDate.UTC().Format(time.RFC3339))
	}
	if !opts.EndDate.IsZero() {
		params.Set("end_date_local", opts.EndDate.UTC().Format(time.RFC3339))
	}

	body, err := c.doRequest(ctx, accessToken, "/segment_efforts", params)
	if err != nil {
		return nil, err
	}

	var efforts []SegmentEffortData
	if err := json.Unmarshal(body, &efforts); err != nil {
		return nil, fmt.Errorf("failed to parse segment efforts: %w", err)
	}
	return efforts, nil
}

// ActivityPage holds paging options for activity history queries. After and
// Before are epoch seconds bounding the date window.
type ActivityPage struct {
	Page    int
	PerPage int
	After   int64
	Before  int64
}

// GetActivities fetches one page of the athlete's activity history.
func (c *Client) GetActivities(ctx context.Context, accessToken string, opts ActivityPage) ([]ActivityData, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(orDefault(opts.Page, 1)))
	params.Set("per_page", strconv.Itoa(orDefault(opts.PerPage, 100)))
	if opts.After > 0 {
		params.Set("after", strconv.FormatInt(opts.After, 10))
	}
	if opts.Before > 0 {
		params.Set("before", strconv.FormatInt(opts.Before, 10))
	}

	body, err := c.doRequest(ctx, accessToken, "/athlete/activities", params)
	if err != nil {
		return nil, err
	}

	var activities []ActivityData
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to parse activities: %w", err)
	}
	return activities, nil
}

// GetAthleteKoms fetches one page of the athlete's segment-leadership
// records (KOMs/QOMs).
func (c *Client) GetAthleteKoms(ctx context.Context, accessToken string, athleteID int64, page, perPage int) ([]KomData, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(orDefault(page, 1)))
	params.Set("per_page", strconv.Itoa(orDefault(perPage, 100)))

	endpoint := fmt.Sprintf("/athletes/%d/koms", athleteID)
	body, err := c.doRequest(ctx, accessToken, endpoint, params)
	if err != nil {
		return nil, err
	}

	var koms []KomData
	if err := json.Unmarshal(body, &koms); err != nil {
		return nil, fmt.Errorf("failed to parse koms: %w", err)
	}
	return koms, nil
}

// GetAthlete fetches the authenticated athlete's profile.
func (c *Client) GetAthlete(ctx context.Context, accessToken string) (*AthleteData, error) {
	body, err := c.doRequest(ctx, accessToken, "/athlete", nil)
	if err != nil {
		return nil, err
	}

	var athlete AthleteData
	if err := json.Unmarshal(body, &athlete); err != nil {
		return nil, fmt.Errorf("failed to parse athlete: %w", err)
	}
	return &athlete, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
