// internal/panels/copilot-bridge/completer.go
package copilotbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"billing-intelligence/internal/common/config"
	"billing-intelligence/internal/common/database"
	"billing-intelligence/internal/models"
	"billing-intelligence/internal/panels/queries"
)

// Completer sends one prompt to a completion model and returns its text.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
	Backend() string
}

// WarehouseCompleter runs the model inside the warehouse.
type WarehouseCompleter struct {
	warehouse *database.WarehouseClient
}

func NewWarehouseCompleter(wh *database.WarehouseClient) *WarehouseCompleter {
	return &WarehouseCompleter{warehouse: wh}
}

func (c *WarehouseCompleter) Backend() string { return config.CopilotBackendWarehouse }

func (c *WarehouseCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	data, _, _, err := queries.Execute(ctx, c.warehouse, models.QueryTypeCortexComplete,
		map[string]interface{}{"model": model, "prompt": prompt})
	if err != nil {
		return "", err
	}
	return data.(string), nil
}

// HTTPCompleter posts prompts to a GenAI gateway. There is no retry: a
// failed call is reported to the caller as is.
type HTTPCompleter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPCompleter(baseURL, apiKey string, client *http.Client) *HTTPCompleter {
	if client == nil {
		// rely on the caller's context for deadlines
		client = &http.Client{}
	}
	return &HTTPCompleter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (c *HTTPCompleter) Backend() string { return config.CopilotBackendHTTP }

func (c *HTTPCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"model": model, "prompt": prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode error: %w", err)
	}
	return apiResponse.Text, nil
}

// NewCompleter picks the backend named in cfg.
func NewCompleter(cfg config.CopilotConfig, wh *database.WarehouseClient) (Completer, error) {
	switch cfg.Backend {
	case "", config.CopilotBackendWarehouse:
		return NewWarehouseCompleter(wh), nil
	case config.CopilotBackendHTTP:
		return NewHTTPCompleter(cfg.GenAI.BaseURL, cfg.GenAI.APIKey, nil), nil
	default:
		return nil, fmt.Errorf("unsupported copilot backend %q", cfg.Backend)
	}
}
