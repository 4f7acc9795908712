package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

// RemotePredictor calls a model server over HTTP. The request body mirrors a
// split-oriented data frame so the server can feed it to the model as is.
type RemotePredictor struct {
	baseURL string
	client  *http.Client
}

type remoteRequest struct {
	Columns []string    `json:"columns"`
	Data    [][]float64 `json:"data"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error,omitempty"`
}

// NewRemotePredictor creates a client for the model server at baseURL.
func NewRemotePredictor(baseURL string, timeout time.Duration) *RemotePredictor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemotePredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// LoadRemote returns a Loader that checks the model server's health once.
func LoadRemote(baseURL string, timeout time.Duration) Loader {
	return func(ctx context.Context) (Predictor, error) {
		if strings.TrimSpace(baseURL) == "" {
			return nil, fmt.Errorf("model server URL is not configured")
		}
		p := NewRemotePredictor(baseURL, timeout)
		if err := p.Health(ctx); err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Health reports whether the model server answers its health endpoint.
func (p *RemotePredictor) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server health returned status: %d", resp.StatusCode)
	}
	return nil
}

// Predict sends one row to the model server.
func (p *RemotePredictor) Predict(ctx context.Context, features workout.FeatureVector) (float64, error) {
	body, err := json.Marshal(remoteRequest{
		Columns: workout.FeatureNames[:],
		Data:    [][]float64{features.Slice()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("model server returned status: %d", resp.StatusCode)
		}
		return 0, fmt.Errorf("failed to decode model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return 0, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, out.Error)
		}
		return 0, fmt.Errorf("model server returned status: %d", resp.StatusCode)
	}

	if len(out.Predictions) != 1 {
		return 0, fmt.Errorf("model server returned %d predictions, want 1", len(out.Predictions))
	}
	return out.Predictions[0], nil
}
