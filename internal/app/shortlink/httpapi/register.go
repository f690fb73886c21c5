package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"short.local/internal/app/shortlink"
	"short.local/internal/app/shortlink/repo"
	"short.local/internal/platform/auth"
	"short.local/internal/platform/httpmiddleware"
	"short.local/internal/platform/ratelimit"
)

// Deps 路由注册所需的依赖集合，由 main 统一组装。
type Deps struct {
	Engine    *shortlink.Engine
	Links     *repo.LinksRepo
	Users     *repo.UsersRepo
	Tokens    auth.TokenService
	Limiter   *ratelimit.Limiter
	RateLimit int
	RateWin   time.Duration
}

// RegisterRoutes 挂载全部 HTTP 路由。跳转走根路径，业务接口在 /api/v1 下。
func RegisterRoutes(r chi.Router, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.RateLimit(d.Limiter, "redirect", d.RateLimit*10, d.RateWin))
		r.Get("/{code}", NewRedirectHandler(d.Engine))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RateLimit(d.Limiter, "create", d.RateLimit, d.RateWin))
			r.With(httpmiddleware.AuthOptional(d.Tokens)).
				Post("/shortlinks", NewCreateHandler(d.Engine))
		})
		r.Get("/shortlinks/{code}", NewInfoHandler(d.Links))

		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RateLimit(d.Limiter, "user", d.RateLimit, d.RateWin))
			r.Post("/register", NewRegisterHandler(d.Users))
			r.Post("/login", NewLoginHandler(d.Users, d.Tokens))
		})

		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.AuthRequired(d.Tokens))
			r.Get("/users/me", NewUserMeHandler())
			r.Get("/users/mine", NewMineHandler(d.Links))
			r.Get("/analytics/{code}", NewAnalyticsHandler(d.Links))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
}
