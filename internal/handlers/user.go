package handlers

import (
	"ProductManager/internal/config"
	"ProductManager/internal/middleware"
	"ProductManager/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler serves registration and login.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID string `json:"user_id"`
}

// Register creates an account and logs it in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrLoginTaken):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, service.ErrEmptyCredentials):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("user registered", "user_id", user.ID)
	h.respondWithSession(w, user.ID)
}

// Login checks credentials and issues the auth cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.respondWithSession(w, user.ID)
}

// Status reports the principal of the auth cookie.
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: userID})
}

func (h *UserHandler) respondWithSession(w http.ResponseWriter, userID string) {
	if err := middleware.SetLoginCookie(w, userID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("failed to issue auth cookie", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: userID})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
