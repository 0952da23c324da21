package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"reelchat-backend/internal/config"
	"reelchat-backend/internal/model"
	"reelchat-backend/internal/utils"
)

// Client talks to the recommendation backend. Every request is bounded by
// the configured timeout; the backend itself never sets a deadline.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.RecommenderConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    utils.NewHTTPClient(cfg.Timeout),
	}
}

// Recommendations resolves a free-text query.
func (c *Client) Recommendations(ctx context.Context, query model.RecommendationQuery) (*Envelope, error) {
	return c.post(ctx, "/recommendations", query)
}

// MoodRecommendations resolves a structured mood query.
func (c *Client) MoodRecommendations(ctx context.Context, query model.MoodQuery) (*Envelope, error) {
	return c.post(ctx, "/recommendations/mood", query)
}

// Trending fetches trending content. timeWindow is "day" or "week".
func (c *Client) Trending(ctx context.Context, mediaType, timeWindow string) (*Envelope, error) {
	params := url.Values{}
	if mediaType != "" {
		params.Set("media_type", mediaType)
	}
	if timeWindow != "" {
		params.Set("time_window", timeWindow)
	}
	return c.get(ctx, "/recommendations/trending", params)
}

// Popular fetches popular content.
func (c *Client) Popular(ctx context.Context, mediaType string, page int) (*Envelope, error) {
	params := url.Values{}
	if mediaType != "" {
		params.Set("media_type", mediaType)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return c.get(ctx, "/recommendations/popular", params)
}

// Genres fetches the combined movie+TV genre lookup.
func (c *Client) Genres(ctx context.Context) (*GenreSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/genres/all", nil)
	if err != nil {
		return nil, err
	}

	var set GenreSet
	if err := c.do(req, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (*Envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope Envelope
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*Envelope, error) {
	target := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var envelope Envelope
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("recommendation backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("recommendation backend returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}

	return nil
}
