package gates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// VoteChecker asks the bot-list API whether a user voted within the last
// 24 hours. The whole gate is feature-flagged; when disabled it is never
// consulted.
type VoteChecker struct {
	enabled bool
	baseURL string
	apiKey  string
	appID   string
	client  *http.Client
}

type Config struct {
	Enabled bool
	BaseURL string // e.g. https://discordbots.org
	APIKey  string
	AppID   string // the bot application id the votes belong to
}

func NewVoteChecker(cfg Config) *VoteChecker {
	return &VoteChecker{
		enabled: cfg.Enabled,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		appID:   cfg.AppID,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *VoteChecker) Enabled() bool {
	return v.enabled
}

func (v *VoteChecker) HasVoted(ctx context.Context, userID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/bots/%s/check?userId=%s", v.baseURL, v.appID, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("vote check returned status %d", resp.StatusCode)
	}

	var body struct {
		Voted int `json:"voted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Voted > 0, nil
}
