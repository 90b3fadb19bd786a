package recipechat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/internal/service/kitchen"
	"github.com/aicookbook/recipechat/pkg/logger"
	"github.com/aicookbook/recipechat/pkg/utils"
)

const sessionNotFound = "세션을 찾을 수 없습니다."

// Handler 食谱对话的HTTP处理器
type Handler struct {
	svc    *kitchen.Service
	logger *zap.Logger
}

// New 创建处理器
func New(svc *kitchen.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.OrNop(log)}
}

// RegisterRoutes 注册 /recipeChat 下的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/init", h.handleInit)
	r.Post("/chat/{sessionID}", h.handleChat)
	r.Get("/chat/{sessionID}/history", h.handleHistory)
	r.Get("/chat/{sessionID}/ws", h.handleStream)
	r.Get("/session/{sessionID}/info", h.handleInfo)
	r.Delete("/session/{sessionID}", h.handleDelete)
	r.Post("/finalize/{sessionID}", h.handleFinalize)
	r.Get("/recipe/{sessionID}", h.handleRecipe)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	var payload recipe.InitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.InitSession(r.Context(), payload)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, recipe.InitSessionResponse{
		SessionID:      res.SessionID,
		InitialMessage: res.InitialMessage,
		Message:        "세션이 생성되었습니다.",
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload recipe.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.svc.Chat(r.Context(), sessionID, payload.Message)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, recipe.ChatResponse{
		SessionID: sessionID,
		Response:  reply.Response,
		IsRecipe:  reply.IsRecipe,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.svc.History(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, recipe.ChatHistoryResponse{SessionID: sessionID, History: history})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Info(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, info)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, recipe.MessageResponse{Message: "세션이 삭제되었습니다."})
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload recipe.FinalizeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	final, err := h.svc.Finalize(r.Context(), sessionID, payload.UserConfirmation)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, final)
}

func (h *Handler) handleRecipe(w http.ResponseWriter, r *http.Request) {
	final, err := h.svc.FinalRecipe(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, final)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, recipe.HealthResponse{Status: "healthy"})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kitchen.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, sessionNotFound)
	case errors.Is(err, kitchen.ErrRecipeNotFound):
		utils.RespondError(w, http.StatusNotFound, "레시피를 찾을 수 없습니다. 먼저 레시피를 요청해주세요.")
	case errors.Is(err, recipe.ErrFoodTypeRequired),
		errors.Is(err, recipe.ErrInvalidCookingLevel),
		errors.Is(err, kitchen.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("recipe chat request failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
