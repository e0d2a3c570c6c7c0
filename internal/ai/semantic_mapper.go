package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type MappingType string

const (
	MappingQuestion MappingType = "question"
	MappingOption   MappingType = "option"
)

type MappingRequest struct {
	Message        string      `json:"message"`
	ConversationID string      `json:"conversationId"`
	MappingType    MappingType `json:"mappingType"`
	Category       string      `json:"category,omitempty"`
	Question       string      `json:"question,omitempty"`
}

// MappingResult is the semantic service verdict. For question mappings
// MappedOption and Score are empty.
type MappingResult struct {
	Success      bool        `json:"success"`
	MappingType  MappingType `json:"mappingType"`
	Category     string      `json:"category"`
	Question     string      `json:"question"`
	MappedOption string      `json:"mappedOption"`
	Score        int         `json:"score"`
	Confidence   float64     `json:"confidence"`
	Message      string      `json:"message,omitempty"`
}

// SemanticMapperClient posts chat messages to the semantic mapping service.
type SemanticMapperClient struct {
	httpClient *http.Client
	url        string
}

func NewSemanticMapperClient(url string, timeout time.Duration) *SemanticMapperClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &SemanticMapperClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

func (c *SemanticMapperClient) Map(ctx context.Context, mreq MappingRequest) (*MappingResult, error) {
	bodyBytes, err := json.Marshal(mreq)
	if err != nil {
		return nil, fmt.Errorf("marshal mapping request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build mapping request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapping request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mapping response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mapping response status %d: %s", resp.StatusCode, string(raw))
	}

	var result MappingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse mapping json failed: %w", err)
	}
	return &result, nil
}
