package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/handler/recipechat"
	middlewarePkg "github.com/aicookbook/recipechat/internal/middleware"
	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/internal/service/kitchen"
	"github.com/aicookbook/recipechat/pkg/logger"
	"github.com/aicookbook/recipechat/pkg/utils"
)

// NewRouter wires HTTP routes to the kitchen service.
func NewRouter(svc *kitchen.Service, corsOrigins []string, log *zap.Logger) http.Handler {
	log = logger.OrNop(log)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(corsOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, recipe.MessageResponse{Message: "Recipe AI Generator API"})
	})

	chatHandler := recipechat.New(svc, log)
	r.Route(recipe.BasePath, func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}
