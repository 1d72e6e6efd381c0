package handler

import (
	"log/slog"
	"net/http"

	"github.com/talentboard/profiledir/internal/api/middleware"
	"github.com/talentboard/profiledir/internal/api/request"
	"github.com/talentboard/profiledir/internal/api/response"
	"github.com/talentboard/profiledir/internal/services/profile"
)

// ProfileHandler handles profile view and edit endpoints
type ProfileHandler struct {
	profiles *profile.Service
	logger   *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *profile.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.profiles.Get(r.Context(), middleware.MustGetAccountID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, view)
}

// Edit handles PUT /api/v1/profile.
// Partial failures are reported with 207 and the per-operation results.
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req request.ProfileEdit
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	id := middleware.MustGetAccountID(r.Context())
	res, err := h.profiles.Edit(r.Context(), id, req.ToService())
	if err != nil {
		WriteError(w, err)
		return
	}

	body := response.EditResponse{
		Outcome: response.OutcomeFromCommit(res.Outcome),
		Dropped: res.Dropped,
	}
	if view, err := h.profiles.Get(r.Context(), id); err == nil {
		body.Profile = view
	} else {
		h.logger.Warn("could not reload profile after edit",
			slog.String("account_id", string(id)),
			slog.String("error", err.Error()))
	}

	response.JSON(w, response.OutcomeStatusCode(res.Outcome.Status), body)
}

// Validate handles POST /api/v1/profile/validate
func (h *ProfileHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req request.ProfileEdit
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.profiles.Validate(r.Context(), middleware.MustGetAccountID(r.Context()), req.ToService())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ValidateResponseFromResult(res))
}

// Promote handles POST /api/v1/profile/promote
func (h *ProfileHandler) Promote(w http.ResponseWriter, r *http.Request) {
	view, err := h.profiles.Promote(r.Context(), middleware.MustGetAccountID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, view)
}
