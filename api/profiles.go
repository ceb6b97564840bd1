package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mfreitas/devmarket/internal/storage"
	"github.com/mfreitas/devmarket/internal/validate"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

const maxAvatarBytes = 5 << 20

// allowed avatar extensions and their content types
var avatarTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type ProfilesHandler struct {
	accountRepo    repository.AccountRepo
	profileRepo    repository.ProfileRepo
	devProfileRepo repository.DeveloperProfileRepo
	store          storage.Store
	validator      *validate.Validator
}

func NewProfilesHandler(ar repository.AccountRepo, pr repository.ProfileRepo, dr repository.DeveloperProfileRepo, store storage.Store, v *validate.Validator) *ProfilesHandler {
	return &ProfilesHandler{accountRepo: ar, profileRepo: pr, devProfileRepo: dr, store: store, validator: v}
}

type profileResponse struct {
	Profile   *models.Profile          `json:"profile"`
	Developer *models.DeveloperProfile `json:"developer,omitempty"`
}

// Me returns the authenticated account's profile, creating a missing profile
// row on the fly. Accounts predating the profile table heal themselves here
// instead of erroring out.
func (h *ProfilesHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, role := accountFromContext(ctx)

	profile, err := h.profileRepo.GetProfileByAccountID(ctx, accountID)
	if err != nil {
		writeError(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		account, err := h.accountRepo.GetAccountByID(ctx, accountID)
		if err != nil || account == nil {
			writeError(w, "failed to load account", http.StatusInternalServerError)
			return
		}
		p := models.Profile{AccountID: accountID, ContactEmail: account.Email}
		if _, err := h.profileRepo.CreateProfile(ctx, &p); err != nil {
			writeError(w, "failed to create profile", http.StatusInternalServerError)
			return
		}
		profile, err = h.profileRepo.GetProfileByAccountID(ctx, accountID)
		if err != nil || profile == nil {
			writeError(w, "failed to load profile", http.StatusInternalServerError)
			return
		}
	}

	resp := profileResponse{Profile: profile}
	if role == models.RoleDeveloper {
		dev, err := h.devProfileRepo.GetDeveloperProfileByAccountID(ctx, accountID)
		if err != nil {
			writeError(w, "failed to load developer profile", http.StatusInternalServerError)
			return
		}
		if dev == nil {
			d := models.DeveloperProfile{AccountID: accountID}
			if _, err := h.devProfileRepo.CreateDeveloperProfile(ctx, &d); err != nil {
				writeError(w, "failed to create developer profile", http.StatusInternalServerError)
				return
			}
			dev, err = h.devProfileRepo.GetDeveloperProfileByAccountID(ctx, accountID)
			if err != nil || dev == nil {
				writeError(w, "failed to load developer profile", http.StatusInternalServerError)
				return
			}
		}
		resp.Developer = dev
	}

	writeJSON(w, resp, http.StatusOK)
}

type updateProfileRequest struct {
	DisplayName  string `json:"display_name"`
	Location     string `json:"location"`
	ContactEmail string `json:"contact_email"`

	// developer fields, ignored for client accounts
	Bio        *string  `json:"bio,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	HourlyRate *int64   `json:"hourly_rate,omitempty"`
	DailyRate  *int64   `json:"daily_rate,omitempty"`
}

func (h *ProfilesHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, role := accountFromContext(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	var req updateProfileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	// validate before the first write so a rejected payload changes nothing
	if role == models.RoleDeveloper {
		if err := h.validator.DeveloperProfile(ctx, body); err != nil {
			writeError(w, fmt.Sprintf("invalid developer profile: %v", err), http.StatusUnprocessableEntity)
			return
		}
	}

	profile, err := h.profileRepo.GetProfileByAccountID(ctx, accountID)
	if err != nil {
		writeError(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		writeError(w, "profile not found", http.StatusNotFound)
		return
	}

	profile.DisplayName = req.DisplayName
	profile.Location = req.Location
	profile.ContactEmail = req.ContactEmail
	if err := h.profileRepo.UpdateProfile(ctx, profile); err != nil {
		writeError(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	if role == models.RoleDeveloper {
		dev, err := h.devProfileRepo.GetDeveloperProfileByAccountID(ctx, accountID)
		if err != nil {
			writeError(w, "failed to load developer profile", http.StatusInternalServerError)
			return
		}
		if dev == nil {
			dev = &models.DeveloperProfile{AccountID: accountID}
			if _, err := h.devProfileRepo.CreateDeveloperProfile(ctx, dev); err != nil {
				writeError(w, "failed to create developer profile", http.StatusInternalServerError)
				return
			}
		}
		if req.Bio != nil {
			dev.Bio = *req.Bio
		}
		if req.Skills != nil {
			dev.Skills = req.Skills
		}
		if req.Languages != nil {
			dev.Languages = req.Languages
		}
		if req.HourlyRate != nil {
			dev.HourlyRate = *req.HourlyRate
		}
		if req.DailyRate != nil {
			dev.DailyRate = *req.DailyRate
		}
		if err := h.devProfileRepo.UpdateDeveloperProfile(ctx, dev); err != nil {
			writeError(w, "failed to update developer profile", http.StatusInternalServerError)
			return
		}
	}

	h.Me(w, r)
}

// UploadAvatar stores the uploaded image and saves its public URL on the
// profile.
func (h *ProfilesHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, "avatar file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := avatarTypes[ext]
	if !ok {
		writeError(w, "avatar must be a jpg or png", http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("avatars/%d-%s%s", accountID, uuid.NewString(), ext)
	url, err := h.store.Put(ctx, key, contentType, file)
	if err != nil {
		logger.Error("store avatar", "account_id", accountID, "err", err)
		writeError(w, "failed to store avatar", http.StatusInternalServerError)
		return
	}

	if err := h.profileRepo.SetAvatarURL(ctx, accountID, url); err != nil {
		writeError(w, "failed to save avatar url", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"avatar_url": url}, http.StatusOK)
}

// GetDeveloper returns the public profile for a developer account.
func (h *ProfilesHandler) GetDeveloper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid developer id", http.StatusBadRequest)
		return
	}

	account, err := h.accountRepo.GetAccountByID(ctx, id)
	if err != nil {
		writeError(w, "failed to load account", http.StatusInternalServerError)
		return
	}
	if account == nil || account.Role != models.RoleDeveloper {
		writeError(w, "developer not found", http.StatusNotFound)
		return
	}

	profile, err := h.profileRepo.GetProfileByAccountID(ctx, id)
	if err != nil {
		writeError(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	dev, err := h.devProfileRepo.GetDeveloperProfileByAccountID(ctx, id)
	if err != nil {
		writeError(w, "failed to load developer profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, profileResponse{Profile: profile, Developer: dev}, http.StatusOK)
}
