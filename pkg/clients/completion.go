package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrCompletionFailed = errors.New("completion request failed")

type CompletionRequest struct {
	Instructions string
	Input        string
}

type CompletionResponse struct {
	Output       string
	Model        string
	InputTokens  int
	OutputTokens int
}

// CompletionClient calls an OpenAI compatible responses endpoint.
type CompletionClient struct {
	client HTTPClientI
	url    string
	apiKey string
	model  string
}

func NewCompletionClient(client HTTPClientI, url, apiKey, model string) *CompletionClient {
	return &CompletionClient{
		client: client,
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

type responsesRequest struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
	Input        string `json:"input"`
}

type responsesPayload struct {
	Model      string `json:"model"`
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *CompletionClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: completion url is not configured", ErrCompletionFailed)
	}
	body, err := json.Marshal(responsesRequest{
		Model:        c.model,
		Instructions: req.Instructions,
		Input:        req.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		headers.Set("Authorization", "Bearer "+c.apiKey)
	}

	statusCode, respBody, err := c.client.Post(ctx, c.url, headers, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}
	if statusCode < 200 || statusCode >= 300 {
		snippet := respBody
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrCompletionFailed, statusCode, strings.TrimSpace(string(snippet)))
	}

	var payload responsesPayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrCompletionFailed, err)
	}
	output := strings.TrimSpace(payload.OutputText)
	for _, item := range payload.Output {
		if output != "" {
			break
		}
		for _, content := range item.Content {
			if text := strings.TrimSpace(content.Text); text != "" {
				output = text
				break
			}
		}
	}
	if output == "" {
		return nil, fmt.Errorf("%w: response has no output text", ErrCompletionFailed)
	}

	return &CompletionResponse{
		Output:       output,
		Model:        payload.Model,
		InputTokens:  payload.Usage.InputTokens,
		OutputTokens: payload.Usage.OutputTokens,
	}, nil
}
