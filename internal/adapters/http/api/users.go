package api

import (
	"context"
	"net/http"

	"github.com/okian/papermatch/internal/adapters/auth"
	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// UsersDependencies defines the interface for account operations.
type UsersDependencies interface {
	DeleteUser(ctx context.Context, userID string) error
}

// UsersHandler handles account requests.
type UsersHandler struct {
	deps UsersDependencies
	log  logger.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UsersDependencies, log logger.Logger) *UsersHandler {
	return &UsersHandler{deps: deps, log: log}
}

// HandleDeleteMe handles DELETE /api/v2/users/me. The caller's interactions
// are removed with the account.
func (h *UsersHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_user"
	userID := auth.UserFrom(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", model.NewKind(op, ErrUnauthorized))
		return
	}
	if err := h.deps.DeleteUser(r.Context(), userID); err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
