// Package voicevox implements a client for the VOICEVOX engine HTTP API,
// which is also spoken by AivisSpeech and other compatible engines.
package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds each HTTP call to a local engine. Synthesis of a
// long utterance can take a while, so this is generous.
const DefaultTimeout = 30 * time.Second

// Style is one speaking variant of a speaker. The ID is assigned by the
// engine and is the unit addressed in synthesis calls; it is opaque and
// not guaranteed contiguous or stable across engine restarts.
type Style struct {
	Name string `json:"name"`
	ID   uint32 `json:"id"`
}

// Speaker is a voice persona grouping one or more styles, as reported by
// the engine's /speakers discovery endpoint.
type Speaker struct {
	Name   string  `json:"name"`
	Styles []Style `json:"styles"`
}

// StyleLabel is the display label for a style within a speaker.
func StyleLabel(speaker Speaker, style Style) string {
	return fmt.Sprintf("%s (%s)", speaker.Name, style.Name)
}

// Client talks to a single VOICEVOX-compatible engine.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the engine at baseURL
// (e.g. "http://localhost:50021").
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the engine address this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Speakers fetches the engine's speaker/style catalog. Any transport
// error, non-2xx status, or malformed payload is returned as an error;
// callers are expected to treat that as "catalog unavailable" rather
// than a fatal condition. No retries happen at this layer.
func (c *Client) Speakers(ctx context.Context) ([]Speaker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/speakers", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speakers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("speakers request returned %s", resp.Status)
	}

	var speakers []Speaker
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return nil, fmt.Errorf("failed to parse speakers response: %w", err)
	}
	return speakers, nil
}

// Synthesize renders text to a WAV buffer using the engine's two-phase
// protocol: POST /audio_query produces an intermediate query document,
// its speedScale field is rewritten to the requested speed, and the
// mutated document is posted to /synthesis. The query phase must
// complete before synthesis is issued; a failure at either phase aborts
// the call with no partial state.
func (c *Client) Synthesize(ctx context.Context, text string, speaker uint32, speed float64) ([]byte, error) {
	query, err := c.audioQuery(ctx, text, speaker)
	if err != nil {
		return nil, err
	}

	query["speedScale"] = speed

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audio query: %w", err)
	}

	u := fmt.Sprintf("%s/synthesis?speaker=%s", c.baseURL, strconv.FormatUint(uint64(speaker), 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("synthesis request returned %s", resp.Status)
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}
	return wav, nil
}

// audioQuery runs the first synthesis phase. The returned document is
// engine-specific and treated as opaque except for speedScale.
func (c *Client) audioQuery(ctx context.Context, text string, speaker uint32) (map[string]any, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.FormatUint(uint64(speaker), 10))

	u := fmt.Sprintf("%s/audio_query?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio_query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("audio_query request returned %s", resp.Status)
	}

	var query map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("failed to parse audio_query response: %w", err)
	}
	return query, nil
}
