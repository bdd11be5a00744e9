package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/service"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
	dev     bool
}

func NewAuthHandler(srv *service.AuthService, logger *zap.Logger, dev bool) *AuthHandler {
	return &AuthHandler{
		service: srv,
		logger:  logger,
		dev:     dev,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	token, user, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respond.ValidationError(w, r, vErr.Fields)
	case errors.Is(err, service.ErrEmailTaken):
		respond.Error(w, r, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "invalid email or password")
	default:
		h.logger.Error("internal error", zap.Error(err))
		msg := "internal error"
		if h.dev {
			msg = err.Error()
		}
		respond.Error(w, r, http.StatusInternalServerError, msg)
	}
}
