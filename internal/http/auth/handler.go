package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/auth"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, tokenResponse{Token: token.Value, ExpiresAt: token.ExpiresAt})
}

// RequireToken rejects requests without a valid "Authorization: Bearer"
// token and stores the token subject in the request context.
func (h *Handler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			respond.Error(w, r, apperr.ErrUnauthorized)
			return
		}

		claims, err := h.svc.Verify(tokenString)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSubject(r.Context(), claims.Subject)))
	})
}
