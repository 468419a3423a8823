package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// Match is a directory entry describing a room.
type Match struct {
	ID       string `json:"id"`
	GameType string `json:"game_type"`
	Status   string `json:"status"`
	Players  int    `json:"players"`
}

// MatchesClient talks to the match-directory REST API: guest auth, match
// creation, joining and listing. Plain request/response, library-default
// transport.
type MatchesClient struct {
	httpClient *http.Client
	baseURL    string

	playerID string
	token    string
}

func NewMatchesClient(baseURL string) *MatchesClient {
	return &MatchesClient{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
	}
}

// Authenticate - obtains a guest token, registering a new player when
// playerID is empty. The token is kept for subsequent calls and for the
// socket URL.
func (that *MatchesClient) Authenticate(ctx context.Context, playerID string) error {
	body := map[string]string{}
	if playerID != "" {
		body["player_id"] = playerID
	}

	var resp struct {
		PlayerID string `json:"player_id"`
		Token    string `json:"token"`
	}

	if err := that.do(ctx, http.MethodPost, "/auth/guest", body, http.StatusOK, &resp); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	that.playerID = resp.PlayerID
	that.token = resp.Token

	return nil
}

func (that *MatchesClient) PlayerID() string {
	return that.playerID
}

func (that *MatchesClient) Token() string {
	return that.token
}

// CreateMatch - opens a new waiting room of the given variant.
func (that *MatchesClient) CreateMatch(ctx context.Context, gameType string) (Match, error) {
	var match Match

	body := map[string]string{"game_type": gameType}
	if err := that.do(ctx, http.MethodPost, "/matches", body, http.StatusCreated, &match); err != nil {
		return Match{}, fmt.Errorf("failed to create match: %w", err)
	}

	return match, nil
}

// JoinMatch - reserves the second seat of a room.
func (that *MatchesClient) JoinMatch(ctx context.Context, code string) (Match, error) {
	var match Match

	path := "/matches/" + code + "/join"
	if err := that.do(ctx, http.MethodPost, path, struct{}{}, http.StatusOK, &match); err != nil {
		return Match{}, fmt.Errorf("failed to join match: %w", err)
	}

	return match, nil
}

// ListMatches - lists waiting rooms, optionally filtered by variant.
func (that *MatchesClient) ListMatches(ctx context.Context, gameType string) ([]Match, error) {
	path := "/matches"
	if gameType != "" {
		path += "?game_type=" + gameType
	}

	var matches []Match
	if err := that.do(ctx, http.MethodGet, path, nil, http.StatusOK, &matches); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, nil
}

// SessionConfig - builds the socket config for a match using the
// authenticated identity.
func (that *MatchesClient) SessionConfig(socketURL string, match Match) Config {
	return Config{
		ServerURL: socketURL,
		Token:     that.token,
		PlayerID:  that.playerID,
		MatchID:   match.ID,
		GameType:  match.GameType,
	}
}

func (that *MatchesClient) do(ctx context.Context, method, path string, body any, wantStatus int, target any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, that.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if that.token != "" {
		req.Header.Set("Authorization", "Bearer "+that.token)
	}

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if target == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
