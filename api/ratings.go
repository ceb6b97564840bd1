package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

type RatingsHandler struct {
	ratingRepo     repository.RatingRepo
	accountRepo    repository.AccountRepo
	devProfileRepo repository.DeveloperProfileRepo
}

func NewRatingsHandler(rr repository.RatingRepo, ar repository.AccountRepo, dr repository.DeveloperProfileRepo) *RatingsHandler {
	return &RatingsHandler{ratingRepo: rr, accountRepo: ar, devProfileRepo: dr}
}

type rateRequest struct {
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	ProjectTitle string `json:"project_title"`
}

// Rate records or replaces the caller's rating of a developer. A client has at
// most one rating per developer; repeating the call updates it and the cached
// aggregate follows in the same transaction.
func (h *RatingsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, role := accountFromContext(ctx)
	if role != models.RoleClient {
		writeError(w, "only clients can rate developers", http.StatusForbidden)
		return
	}

	developerID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || developerID <= 0 {
		writeError(w, "invalid developer id", http.StatusBadRequest)
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, "rating must be between 1 and 5", http.StatusUnprocessableEntity)
		return
	}

	developer, err := h.accountRepo.GetAccountByID(ctx, developerID)
	if err != nil {
		writeError(w, "failed to load developer", http.StatusInternalServerError)
		return
	}
	if developer == nil || developer.Role != models.RoleDeveloper {
		writeError(w, "developer not found", http.StatusNotFound)
		return
	}

	rating := models.Rating{
		ClientID:     accountID,
		DeveloperID:  developerID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		ProjectTitle: req.ProjectTitle,
	}
	if _, err := h.ratingRepo.UpsertRating(ctx, &rating); err != nil {
		writeError(w, "failed to store rating", http.StatusInternalServerError)
		return
	}

	dev, err := h.devProfileRepo.GetDeveloperProfileByAccountID(ctx, developerID)
	if err != nil {
		writeError(w, "failed to load developer profile", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"rating": rating}
	if dev != nil {
		resp["average_rating"] = dev.AverageRating
		resp["total_ratings"] = dev.TotalRatings
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *RatingsHandler) ListForDeveloper(w http.ResponseWriter, r *http.Request) {
	developerID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || developerID <= 0 {
		writeError(w, "invalid developer id", http.StatusBadRequest)
		return
	}

	ratings, err := h.ratingRepo.ListRatingsByDeveloper(r.Context(), developerID)
	if err != nil {
		writeError(w, "failed to list ratings", http.StatusInternalServerError)
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}

	writeJSON(w, map[string]any{"items": ratings}, http.StatusOK)
}
