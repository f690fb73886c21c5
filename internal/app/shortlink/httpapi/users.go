package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"short.local/internal/app/shortlink/repo"
	"short.local/internal/platform/auth"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func NewRegisterHandler(usersRepo *repo.UsersRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		userID, err := usersRepo.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, repo.ErrUserAlreadyExists):
				respondError(w, http.StatusConflict, err.Error())
			case errors.Is(err, repo.ErrInvalidUsername), errors.Is(err, repo.ErrInvalidPassword):
				respondError(w, http.StatusBadRequest, err.Error())
			default:
				respondError(w, http.StatusInternalServerError, "register failed")
			}
			return
		}
		respondJSON(w, http.StatusCreated, RegisterResponse{
			ID:       userID,
			Username: req.Username,
		})
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewLoginHandler(usersRepo *repo.UsersRepo, ts auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		user, err := usersRepo.FindByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				respondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			slog.Error("find user failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := ts.Sign(strconv.FormatInt(user.ID, 10), user.Role)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "sign failed")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func NewUserMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.GetIdentity(r.Context())
		if !ok {
			respondError(w, http.StatusInternalServerError, "missing identity")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"user_id": id.UserID,
			"role":    id.Role,
		})
	}
}
