package kitchen

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/aicookbook/recipechat/internal/client"
	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// Local exposes a Service through the same methods as the HTTP client, so
// the chat front end can run without a server. Failures come back as
// *client.APIError carrying the status and detail the HTTP backend would
// have sent, so errors.Is(err, client.ErrNetworkOrServer) holds in both
// modes. The kitchen sentinels stay reachable through Unwrap.
type Local struct {
	svc *Service
}

// NewLocal wraps svc.
func NewLocal(svc *Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) InitSession(ctx context.Context, profile recipe.Profile) (*recipe.InitResult, error) {
	res, err := l.svc.InitSession(ctx, profile)
	if err != nil {
		return nil, apiError(http.MethodPost, "/init", err)
	}
	return res, nil
}

func (l *Local) SendMessage(ctx context.Context, sessionID, text string) (*recipe.ChatReply, error) {
	reply, err := l.svc.Chat(ctx, sessionID, text)
	if err != nil {
		return nil, apiError(http.MethodPost, "/chat/"+url.PathEscape(sessionID), err)
	}
	return reply, nil
}

// StreamMessage mirrors the client's websocket call.
func (l *Local) StreamMessage(ctx context.Context, sessionID, text string, onDelta func(delta string)) (*recipe.ChatReply, error) {
	reply, err := l.svc.ChatStream(ctx, sessionID, text, func(delta string) error {
		if onDelta != nil {
			onDelta(delta)
		}
		return nil
	})
	if err != nil {
		return nil, apiError(http.MethodGet, "/chat/"+url.PathEscape(sessionID)+"/ws", err)
	}
	return reply, nil
}

func (l *Local) GetHistory(ctx context.Context, sessionID string) ([]recipe.Message, error) {
	messages, err := l.svc.History(ctx, sessionID)
	if err != nil {
		return nil, apiError(http.MethodGet, "/chat/"+url.PathEscape(sessionID)+"/history", err)
	}
	return messages, nil
}

func (l *Local) GetSessionInfo(ctx context.Context, sessionID string) (*recipe.SessionInfo, error) {
	info, err := l.svc.Info(ctx, sessionID)
	if err != nil {
		return nil, apiError(http.MethodGet, "/session/"+url.PathEscape(sessionID)+"/info", err)
	}
	return info, nil
}

func (l *Local) Finalize(ctx context.Context, sessionID, confirmation string) (*recipe.FinalRecipe, error) {
	r, err := l.svc.Finalize(ctx, sessionID, confirmation)
	if err != nil {
		return nil, apiError(http.MethodPost, "/finalize/"+url.PathEscape(sessionID), err)
	}
	return r, nil
}

func (l *Local) GetFinalRecipe(ctx context.Context, sessionID string) (*recipe.FinalRecipe, error) {
	r, err := l.svc.FinalRecipe(ctx, sessionID)
	if err != nil {
		return nil, apiError(http.MethodGet, "/recipe/"+url.PathEscape(sessionID), err)
	}
	return r, nil
}

func (l *Local) DeleteSession(ctx context.Context, sessionID string) (string, error) {
	if err := l.svc.Delete(ctx, sessionID); err != nil {
		return "", apiError(http.MethodDelete, "/session/"+url.PathEscape(sessionID), err)
	}
	return "세션이 삭제되었습니다.", nil
}

// HealthCheck always reports healthy.
func (l *Local) HealthCheck(context.Context) (string, error) {
	return "healthy", nil
}

// apiError maps a kitchen failure to the status and detail the HTTP
// handlers respond with.
func apiError(method, path string, err error) error {
	apiErr := &client.APIError{Method: method, Path: path, Err: err}
	switch {
	case errors.Is(err, ErrSessionNotFound):
		apiErr.StatusCode = http.StatusNotFound
		apiErr.Detail = "세션을 찾을 수 없습니다."
	case errors.Is(err, ErrRecipeNotFound):
		apiErr.StatusCode = http.StatusNotFound
		apiErr.Detail = "레시피를 찾을 수 없습니다. 먼저 레시피를 요청해주세요."
	case errors.Is(err, recipe.ErrFoodTypeRequired),
		errors.Is(err, recipe.ErrInvalidCookingLevel),
		errors.Is(err, ErrEmptyMessage):
		apiErr.StatusCode = http.StatusBadRequest
		apiErr.Detail = err.Error()
	default:
		apiErr.StatusCode = http.StatusInternalServerError
		apiErr.Detail = "internal server error"
	}
	return apiErr
}
