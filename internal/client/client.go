// Package client talks to the recipe chat backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/pkg/logger"
)

// Client issues typed requests against the /recipeChat namespace.
// It never retries; a failed call returns its error immediately.
type Client struct {
	baseURL    string
	basePath   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBasePath overrides the session namespace.
func WithBasePath(path string) Option {
	return func(c *Client) {
		c.basePath = "/" + strings.Trim(path, "/")
		if c.basePath == "/" {
			c.basePath = ""
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger.OrNop(l)
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		basePath: recipe.BasePath,
		// No timeout: a hanging backend shows up as a pending call.
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitSession creates a session for the profile and returns its id together
// with the assistant's first recipe suggestion.
func (c *Client) InitSession(ctx context.Context, profile recipe.Profile) (*recipe.InitResult, error) {
	var resp recipe.InitSessionResponse
	if err := c.do(ctx, http.MethodPost, "/init", recipe.InitSessionRequest(profile), &resp); err != nil {
		return nil, err
	}
	return &recipe.InitResult{SessionID: resp.SessionID, InitialMessage: resp.InitialMessage}, nil
}

// SendMessage posts a user message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, sessionID, text string) (*recipe.ChatReply, error) {
	var resp recipe.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat/"+url.PathEscape(sessionID), recipe.ChatRequest{Message: text}, &resp); err != nil {
		return nil, err
	}
	return &recipe.ChatReply{Response: resp.Response, IsRecipe: resp.IsRecipe}, nil
}

// GetHistory returns the stored transcript in conversation order.
func (c *Client) GetHistory(ctx context.Context, sessionID string) ([]recipe.Message, error) {
	var resp recipe.ChatHistoryResponse
	if err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(sessionID)+"/history", nil, &resp); err != nil {
		return nil, err
	}
	if resp.History == nil {
		return []recipe.Message{}, nil
	}
	return resp.History, nil
}

// GetSessionInfo returns the session's profile and finalized flag.
func (c *Client) GetSessionInfo(ctx context.Context, sessionID string) (*recipe.SessionInfo, error) {
	var resp recipe.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/session/"+url.PathEscape(sessionID)+"/info", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Finalize turns the session's latest recipe into the final artifact.
// An empty confirmation is sent as "".
func (c *Client) Finalize(ctx context.Context, sessionID, confirmation string) (*recipe.FinalRecipe, error) {
	var resp recipe.FinalRecipeResponse
	if err := c.do(ctx, http.MethodPost, "/finalize/"+url.PathEscape(sessionID), recipe.FinalizeRequest{UserConfirmation: confirmation}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFinalRecipe re-reads a finalized recipe.
func (c *Client) GetFinalRecipe(ctx context.Context, sessionID string) (*recipe.FinalRecipe, error) {
	var resp recipe.FinalRecipeResponse
	if err := c.do(ctx, http.MethodGet, "/recipe/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSession removes the session and returns the backend's acknowledgement.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) (string, error) {
	var resp recipe.MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/session/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// HealthCheck returns the backend's liveness status.
func (c *Client) HealthCheck(ctx context.Context) (string, error) {
	var resp recipe.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+c.basePath+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	log.Debug("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("API request failed", zap.Error(err))
		return &APIError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var errBody recipe.ErrorResponse
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Detail = errBody.Detail
		}
		log.Warn("API error response",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail),
		)
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	log.Debug("API response", zap.Int("status", resp.StatusCode))
	return nil
}
