package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// StreamMessage sends text over the chat websocket and calls onDelta with
// each piece of the reply as it arrives. It returns the complete reply, the
// same value SendMessage would have returned.
func (c *Client) StreamMessage(ctx context.Context, sessionID, text string, onDelta func(delta string)) (*recipe.ChatReply, error) {
	path := "/chat/" + url.PathEscape(sessionID) + "/ws"
	target, err := websocketURL(c.baseURL + c.basePath + path)
	if err != nil {
		return nil, fmt.Errorf("failed to build websocket url: %w", err)
	}

	requestID := uuid.NewString()
	header := http.Header{}
	header.Set("X-Request-ID", requestID)
	log := c.logger.With(
		zap.String("method", http.MethodGet),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	log.Debug("API stream")

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.httpClient.Timeout
	conn, resp, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		return nil, handshakeError(path, resp, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(recipe.ChatRequest{Message: text}); err != nil {
		return nil, c.streamFailure(ctx, path, err)
	}

	for {
		var frame recipe.StreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return nil, c.streamFailure(ctx, path, err)
		}

		switch frame.Type {
		case recipe.FrameDelta:
			if onDelta != nil {
				onDelta(frame.Content)
			}
		case recipe.FrameMessage:
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			log.Debug("API stream done", zap.Bool("is_recipe", frame.IsRecipe))
			return &recipe.ChatReply{Response: frame.Content, IsRecipe: frame.IsRecipe}, nil
		case recipe.FrameError:
			log.Warn("API stream error", zap.String("detail", frame.Detail))
			return nil, &APIError{Method: http.MethodGet, Path: path, StatusCode: http.StatusSwitchingProtocols, Detail: frame.Detail}
		default:
			log.Debug("ignoring unknown frame", zap.String("type", frame.Type))
		}
	}
}

func (c *Client) streamFailure(ctx context.Context, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return &APIError{Method: http.MethodGet, Path: path, StatusCode: http.StatusSwitchingProtocols, Err: err}
}

// handshakeError reports a refused upgrade the same way a failed REST call
// is reported, including the backend's detail when it sent one.
func handshakeError(path string, resp *http.Response, err error) error {
	apiErr := &APIError{Method: http.MethodGet, Path: path}
	if resp == nil || !errors.Is(err, websocket.ErrBadHandshake) {
		apiErr.Err = err
		return apiErr
	}
	defer resp.Body.Close()

	apiErr.StatusCode = resp.StatusCode
	data, _ := io.ReadAll(resp.Body)
	var errBody recipe.ErrorResponse
	if json.Unmarshal(data, &errBody) == nil {
		apiErr.Detail = errBody.Detail
	}
	return apiErr
}

func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
