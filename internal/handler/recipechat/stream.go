package recipechat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/internal/service/kitchen"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(*http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleStream 通过 WebSocket 逐段推送回复
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.svc.Info(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("session_id", sessionID))
	log.Debug("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go pingLoop(ctx, conn)

	for {
		var req recipe.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if strings.TrimSpace(req.Message) == "" {
			if err := writeFrame(conn, recipe.StreamFrame{Type: recipe.FrameError, SessionID: sessionID, Detail: "message is required"}); err != nil {
				return
			}
			continue
		}

		reply, err := h.svc.ChatStream(ctx, sessionID, req.Message, func(delta string) error {
			return writeFrame(conn, recipe.StreamFrame{Type: recipe.FrameDelta, SessionID: sessionID, Content: delta})
		})
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) {
				return
			}
			if werr := writeFrame(conn, recipe.StreamFrame{Type: recipe.FrameError, SessionID: sessionID, Detail: h.streamErrorDetail(err)}); werr != nil {
				return
			}
			continue
		}

		if err := writeFrame(conn, recipe.StreamFrame{
			Type:      recipe.FrameMessage,
			SessionID: sessionID,
			Content:   reply.Response,
			IsRecipe:  reply.IsRecipe,
		}); err != nil {
			return
		}
	}
}

func (h *Handler) streamErrorDetail(err error) string {
	switch {
	case errors.Is(err, kitchen.ErrSessionNotFound):
		return sessionNotFound
	case errors.Is(err, kitchen.ErrEmptyMessage):
		return err.Error()
	default:
		h.logger.Error("streamed chat failed", zap.Error(err))
		return "internal server error"
	}
}

func writeFrame(conn *websocket.Conn, frame recipe.StreamFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(frame)
}

// pingLoop keeps idle connections alive. WriteControl may run concurrently
// with the handler's data writes.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
