package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrSatan/Code-Guardian/internal/adapter/llm"
	llmhttp "github.com/MrSatan/Code-Guardian/internal/adapter/llm/http"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 60 * time.Second
)

// HTTPClient is an HTTP client for the OpenAI Chat Completion API.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	retry   llmhttp.RetryConfig
	logger  llmhttp.Logger
}

// NewHTTPClient creates a new OpenAI HTTP client.
func NewHTTPClient(apiKey, model string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		retry:   llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (OpenAI-compatible endpoints, tests).
func (c *HTTPClient) SetBaseURL(url string) {
	if url != "" {
		c.baseURL = url
	}
}

// SetTimeout sets the HTTP timeout.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior.
func (c *HTTPClient) SetRetryConfig(cfg llmhttp.RetryConfig) {
	c.retry = cfg
}

// SetLogger attaches a structured logger for request/response records.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// Call makes a request to the Chat Completion API with retry and typed
// error mapping.
func (c *HTTPClient) Call(ctx context.Context, systemPrompt, userPrompt string) (*llm.ProviderResponse, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:     providerName,
			Model:        c.model,
			Timestamp:    time.Now(),
			PromptChars:  len(userPrompt),
			PromptTokens: llm.EstimateTokens(userPrompt),
			APIKey:       c.apiKey,
		})
	}

	var response *llm.ProviderResponse
	operation := func(ctx context.Context) error {
		started := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return llmhttp.NewTimeoutError(providerName, "request timed out")
			}
			return llmhttp.NewTimeoutError(providerName, err.Error())
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := c.handleErrorResponse(resp.StatusCode, body)
			if c.logger != nil {
				c.logger.LogError(ctx, llmhttp.ErrorLog{
					Provider:   providerName,
					Model:      c.model,
					Timestamp:  time.Now(),
					Duration:   time.Since(started),
					Error:      apiErr,
					StatusCode: resp.StatusCode,
					Retryable:  llmhttp.ShouldRetry(apiErr),
				})
			}
			return apiErr
		}

		var chatResp ChatCompletionResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			return llmhttp.NewMalformedResponseError(providerName, err.Error())
		}
		if len(chatResp.Choices) == 0 {
			return llmhttp.NewMalformedResponseError(providerName, "no choices in response")
		}

		response = &llm.ProviderResponse{
			Model: chatResp.Model,
			Text:  chatResp.Choices[0].Message.Content,
			Usage: llm.Usage{
				TokensIn:  chatResp.Usage.PromptTokens,
				TokensOut: chatResp.Usage.CompletionTokens,
			},
		}

		if c.logger != nil {
			c.logger.LogResponse(ctx, llmhttp.ResponseLog{
				Provider:   providerName,
				Model:      c.model,
				Timestamp:  time.Now(),
				Duration:   time.Since(started),
				TokensIn:   response.Usage.TokensIn,
				TokensOut:  response.Usage.TokensOut,
				StatusCode: resp.StatusCode,
			})
		}
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retry); err != nil {
		return nil, err
	}
	return response, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	} else if len(body) > 0 && len(body) < 200 {
		message = string(body)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmhttp.NewAuthenticationError(providerName, message)
	case http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError(providerName, message)
	case http.StatusBadRequest:
		return llmhttp.NewInvalidRequestError(providerName, message)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llmhttp.NewServiceUnavailableError(providerName, message)
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	}
}
