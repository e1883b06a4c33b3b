package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mario1918/testCaseGenie-NG/common/httpclient"
	"github.com/mario1918/testCaseGenie-NG/internal/http/dto"
)

// Relay is the generation relay as seen from the client.
type Relay interface {
	Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error)
	Health(ctx context.Context) error
}

// RelayError is a failed relay call. Raw holds the model output when the
// relay could not parse it.
type RelayError struct {
	StatusCode int
	Message    string
	Raw        string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
}

type relayClient struct {
	client  *retryablehttp.Client
	baseURL string
}

func NewRelayClient(baseURL string, client *retryablehttp.Client) Relay {
	if client == nil {
		client = httpclient.New(httpclient.Config{})
	}
	return &relayClient{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (r *relayClient) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generate request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling relay: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading relay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp dto.ErrorResponse
		if json.Unmarshal(raw, &errResp) != nil || errResp.Error == "" {
			errResp.Error = strings.TrimSpace(string(raw))
		}
		return nil, &RelayError{StatusCode: resp.StatusCode, Message: errResp.Error, Raw: errResp.Raw}
	}

	var out dto.GenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding relay response: %w", err)
	}
	return &out, nil
}

func (r *relayClient) Health(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay health: %w", err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckResponse(resp); err != nil {
		return fmt.Errorf("relay health: %w", err)
	}
	return nil
}
