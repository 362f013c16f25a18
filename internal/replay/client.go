package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sowferyowman/BiomechFit-app/internal/models"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

// Client sends recordings to the BiomechFit server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the BiomechFit server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// FetchExercises retrieves the server's exercise catalog.
func (c *Client) FetchExercises(ctx context.Context) ([]models.ExerciseInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching exercises: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("exercises request failed (status %d): %s", resp.StatusCode, body)
	}

	var catalog []models.ExerciseInfo
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}
	return catalog, nil
}

// Analyze POSTs a recording to the server's analyze endpoint.
// Retries up to 3 times with exponential backoff on network and server
// errors; client errors (4xx) are returned at once.
func (c *Client) Analyze(ctx context.Context, workout string, targetReps int, frames []pose.LandmarkSet) (session.Summary, error) {
	data, err := json.Marshal(models.AnalyzeRequest{
		Workout: workout,
		User:    models.AnalyzeUser{Reps: targetReps},
		Frames:  frames,
	})
	if err != nil {
		return session.Summary{}, fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return session.Summary{}, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/analyze", bytes.NewReader(data))
		if err != nil {
			return session.Summary{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var sum session.Summary
			if err := json.Unmarshal(body, &sum); err != nil {
				return session.Summary{}, fmt.Errorf("decoding summary: %w", err)
			}
			return sum, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return session.Summary{}, fmt.Errorf("analyze rejected (status %d): %s", resp.StatusCode, errorMessage(body))
		}
		lastErr = fmt.Errorf("analyze failed (status %d): %s", resp.StatusCode, errorMessage(body))
	}

	return session.Summary{}, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func errorMessage(body []byte) string {
	var e models.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
