package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vendora/backend/internal/auth"
	"github.com/vendora/backend/internal/models"
	"github.com/vendora/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	auth      *services.AuthService
	engine    *services.Engine
	validator *services.ValidationHelper
	logger    *zap.Logger
}

// SignupRequest represents the signup request payload
// @Description Signup request structure
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum" example:"alice"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"password123"`
	Role     string `json:"role" validate:"required" example:"buyer"`
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"password123"`
}

// LoginResponse represents the authentication response
// @Description Authentication response structure
type LoginResponse struct {
	Token   string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User    models.User `json:"user"`
	Warning string      `json:"warning,omitempty" example:"There is already an active session using your account"`
}

func NewUserHandler(authService *services.AuthService, engine *services.Engine, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		auth:      authService,
		engine:    engine,
		validator: services.NewValidationHelper(),
		logger:    logger.Named("user_handler"),
	}
}

// Signup handles user registration
// @Summary Register a new user
// @Description Register a buyer or seller with a username and password
// @Tags user
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request"
// @Success 201 {object} models.User
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /user/signup [post]
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.logger.Info("signup rejected", zap.String("username", req.Username), zap.Error(err))
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with username and password. A warning is returned when another session is active.
// @Tags user
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /user/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:   result.Token,
		User:    *result.User,
		Warning: result.Warning,
	})
}

// Logout revokes the calling token
// @Summary Logout
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} services.ErrorResponse
// @Router /user/logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// LogoutAll revokes every active token of the caller
// @Summary Logout all sessions
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,revoked=int}
// @Failure 401 {object} services.ErrorResponse
// @Router /user/logout/all [post]
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	n, err := h.auth.LogoutAll(r.Context(), claims.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "All sessions logged out", "revoked": n})
}

// Sessions lists the caller's active sessions
// @Summary List active sessions
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} auth.Session
// @Failure 401 {object} services.ErrorResponse
// @Router /user/sessions [get]
func (h *UserHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	sessions, err := h.auth.Sessions(r.Context(), claims.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if sessions == nil {
		sessions = []auth.Session{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

// Account returns the caller's balance
// @Summary Get account
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Account
// @Failure 403 {object} services.ErrorResponse
// @Router /user/account [get]
func (h *UserHandler) Account(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	account, err := h.engine.GetAccount(r.Context(), claims.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Deposit inserts one coin
// @Summary Deposit a coin
// @Description Deposit exactly one coin of 5, 10, 20, 50 or 100
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param amount path int true "Coin value"
// @Success 200 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /user/deposit/{amount} [put]
func (h *UserHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	amount, err := strconv.ParseInt(chi.URLParam(r, "amount"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Deposit amount must be a whole number", http.StatusBadRequest, nil)
		return
	}

	account, err := h.engine.Deposit(r.Context(), claims.Username, amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// ResetDeposit empties the caller's balance
// @Summary Reset deposit
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Account
// @Failure 403 {object} services.ErrorResponse
// @Router /user/deposit/reset [put]
func (h *UserHandler) ResetDeposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	account, err := h.engine.ResetDeposit(r.Context(), claims.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
