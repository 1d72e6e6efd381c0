package handler

import (
	"net/http"

	"github.com/talentboard/profiledir/internal/api/middleware"
	"github.com/talentboard/profiledir/internal/api/request"
	"github.com/talentboard/profiledir/internal/api/response"
	"github.com/talentboard/profiledir/internal/services/auth"
	"github.com/talentboard/profiledir/internal/services/commit"
)

// AccountHandler handles registration and login endpoints
type AccountHandler struct {
	authService *auth.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service) *AccountHandler {
	return &AccountHandler{
		authService: authService,
	}
}

// Register handles POST /api/v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}
	if req.Role == "" {
		WriteError(w, NewInvalidRequestError("role is required"))
		return
	}

	reg, err := h.authService.Register(r.Context(), auth.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		DisplayName: req.DisplayName,
		Profile:     req.Profile.ToService(),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	// The login exists even when a profile leg failed; the caller retries with PUT /profile
	status := http.StatusCreated
	if reg.Result.Outcome.Status != commit.StatusAllSucceeded {
		status = response.OutcomeStatusCode(reg.Result.Outcome.Status)
	}
	response.JSON(w, status, response.RegisterResponse{
		AuthResponse: response.AuthResponseFromSession(reg.Session, reg.Account),
		Outcome:      response.OutcomeFromCommit(reg.Result.Outcome),
	})
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	account, err := h.authService.GetAccount(r.Context(), session.Token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session, account))
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, NewUnauthorizedError())
		return
	}

	account, err := h.authService.GetAccount(r.Context(), session.Token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}
