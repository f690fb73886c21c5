package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"short.local/internal/platform/auth"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mustGetUserID 从上下文中取用户 ID，失败时已写好错误响应。
func mustGetUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not login")
		return 0, false
	}
	userID, err := strconv.ParseInt(identity.UserID, 10, 64)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "invalid user id")
		return 0, false
	}
	return userID, true
}

// tryGetUserID 可选认证场景：未登录返回 nil。
func tryGetUserID(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		return nil, true
	}
	userID, err := strconv.ParseInt(identity.UserID, 10, 64)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "invalid user id")
		return nil, false
	}
	return &userID, true
}
