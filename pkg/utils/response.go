package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/model/recipe"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// RespondError 发送错误响应，body 为 {"detail": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, recipe.ErrorResponse{Detail: message})
}
