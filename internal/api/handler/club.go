package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/talentboard/profiledir/internal/api/response"
	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/directory"
)

const maxSearchLimit = 100

// ClubHandler handles club directory endpoints
type ClubHandler struct {
	directory *directory.Service
}

// NewClubHandler creates a new club handler
func NewClubHandler(directory *directory.Service) *ClubHandler {
	return &ClubHandler{
		directory: directory,
	}
}

// Search handles GET /api/v1/clubs?q=&limit=
func (h *ClubHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		WriteError(w, NewInvalidRequestError("q is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	clubs, err := h.directory.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	if clubs == nil {
		clubs = []model.Club{}
	}

	response.JSON(w, http.StatusOK, response.ClubList{Clubs: clubs})
}

// Get handles GET /api/v1/clubs/{id}
func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	club, err := h.directory.Get(r.Context(), model.ClubID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, club)
}
