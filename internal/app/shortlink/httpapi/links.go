package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"short.local/internal/app/shortlink"
	"short.local/internal/app/shortlink/repo"
	"short.local/internal/platform/httpmiddleware"
	"short.local/internal/platform/metrics"
)

// 本包只做传输层工作：request/response 结构体、参数解析、错误映射。
// 领域逻辑在 internal/app/shortlink，SQL 在 internal/app/shortlink/repo。

type CreateLinkRequest struct {
	URL       string     `json:"url"`
	Code      string     `json:"code,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type CreateLinkResponse struct {
	Code      string     `json:"code"`
	ShortURL  string     `json:"short_url"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func NewCreateHandler(engine *shortlink.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateLinkRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json body")
			return
		}

		userID, ok := tryGetUserID(w, r)
		if !ok {
			return
		}

		link, err := engine.Create(r.Context(), req.URL, strings.TrimSpace(req.Code), req.ExpiresAt, userID)
		if err != nil {
			switch {
			case errors.Is(err, shortlink.ErrInvalidURL), errors.Is(err, shortlink.ErrInvalidCode):
				respondError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, shortlink.ErrCodeInUse):
				respondError(w, http.StatusConflict, err.Error())
			case errors.Is(err, shortlink.ErrCodeGenerationExhausted):
				slog.Error("code generation exhausted", "err", err)
				respondError(w, http.StatusServiceUnavailable, err.Error())
			default:
				slog.Error("shortlink create failed", "err", err)
				respondError(w, http.StatusInternalServerError, "shortlink create failed")
			}
			return
		}

		respondJSON(w, http.StatusCreated, CreateLinkResponse{
			Code:      link.Code,
			ShortURL:  shortURL(r, link.Code),
			URL:       link.URL,
			CreatedAt: link.CreatedAt,
			ExpiresAt: link.ExpiresAt,
		})
	}
}

func NewRedirectHandler(engine *shortlink.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		url, err := engine.Resolve(r.Context(), code, shortlink.Visit{
			IP:        httpmiddleware.ClientIP(r),
			UserAgent: r.UserAgent(),
			Referer:   r.Referer(),
		})
		if err != nil {
			if errors.Is(err, shortlink.ErrNotFound) {
				respondError(w, http.StatusNotFound, "url not found")
				return
			}
			slog.Error("resolve failed", "code", code, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		metrics.ShortlinkRedirects.Inc()
		http.Redirect(w, r, url, http.StatusFound)
	}
}

// NewInfoHandler 返回短码的元数据（不触发跳转、不记点击）。
func NewInfoHandler(store shortlink.LinkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		link, err := store.FindByCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, shortlink.ErrNotFound) {
				respondError(w, http.StatusNotFound, err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, link)
	}
}

func NewAnalyticsHandler(linksRepo *repo.LinksRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		userID, ok := mustGetUserID(w, r)
		if !ok {
			return
		}

		owns, err := linksRepo.UserOwnsLink(r.Context(), userID, code)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !owns {
			respondError(w, http.StatusForbidden, "no permission")
			return
		}

		report, err := linksRepo.AnalyticsByCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, shortlink.ErrNotFound) {
				respondError(w, http.StatusNotFound, err.Error())
				return
			}
			slog.Error("analytics failed", "code", code, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func NewMineHandler(linksRepo *repo.LinksRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mustGetUserID(w, r)
		if !ok {
			return
		}
		list, err := linksRepo.ListByUser(r.Context(), userID, 50)
		if err != nil {
			slog.Error("list user links failed", "user_id", userID, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// shortURL 拼出对外的短链地址。
// X-Forwarded-Proto 和其它转发头一样只在请求来自可信代理时采信，
// 否则客户端可以往响应里注入任意 scheme。
func shortURL(r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if httpmiddleware.FromTrustedProxy(r) {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}
	}
	if r.Host == "" {
		return "/" + code
	}
	return scheme + "://" + r.Host + "/" + code
}
