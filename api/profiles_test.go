package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfreitas/devmarket/api"
	"github.com/mfreitas/devmarket/internal/validate"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository/mock"
)

func newProfilesHandler(t *testing.T, mocks *mock.Mocks) *api.ProfilesHandler {
	t.Helper()
	v, err := validate.New()
	if err != nil {
		t.Fatalf("validate.New: %v", err)
	}
	return api.NewProfilesHandler(mocks.AccRepo, mocks.ProfRepo, mocks.DevRepo, nil, v)
}

func TestUpdateMe_RejectedPayloadChangesNothing(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.ProfRepo.Stored = &models.Profile{ID: 1, AccountID: 1, DisplayName: "Original", Location: "Lisbon", ContactEmail: "dev@example.com"}
	mocks.DevRepo.Stored = &models.DeveloperProfile{ID: 1, AccountID: 1, Skills: []string{"go"}, HourlyRate: 5000}
	handler := newProfilesHandler(t, mocks)

	body := map[string]any{
		"display_name": "Hacked",
		"location":     "Elsewhere",
		"skills":       []string{""},
		"hourly_rate":  -5,
	}
	req := authedRequest(http.MethodPut, "/v1/profiles/me", body, 1, models.RoleDeveloper, nil)
	w := httptest.NewRecorder()
	handler.UpdateMe(w, req)

	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		data, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 422, got %d body=%s", res.StatusCode, string(data))
	}

	// a rejected update must not have touched any stored row
	if mocks.ProfRepo.Stored.DisplayName != "Original" || mocks.ProfRepo.Stored.Location != "Lisbon" {
		t.Fatalf("rejected payload mutated the profile: %+v", mocks.ProfRepo.Stored)
	}
	if mocks.DevRepo.Stored.HourlyRate != 5000 || len(mocks.DevRepo.Stored.Skills) != 1 || mocks.DevRepo.Stored.Skills[0] != "go" {
		t.Fatalf("rejected payload mutated the developer profile: %+v", mocks.DevRepo.Stored)
	}
}

func TestUpdateMe_DeveloperSuccess(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.ProfRepo.Stored = &models.Profile{ID: 1, AccountID: 1, DisplayName: "Original", ContactEmail: "dev@example.com"}
	mocks.DevRepo.Stored = &models.DeveloperProfile{ID: 1, AccountID: 1}
	handler := newProfilesHandler(t, mocks)

	body := map[string]any{
		"display_name": "Maria Dev",
		"location":     "Porto",
		"skills":       []string{"go", "sql"},
		"hourly_rate":  6000,
	}
	req := authedRequest(http.MethodPut, "/v1/profiles/me", body, 1, models.RoleDeveloper, nil)
	w := httptest.NewRecorder()
	handler.UpdateMe(w, req)

	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 200, got %d body=%s", res.StatusCode, string(data))
	}
	if mocks.ProfRepo.Stored.DisplayName != "Maria Dev" {
		t.Fatalf("profile not updated: %+v", mocks.ProfRepo.Stored)
	}
	if mocks.DevRepo.Stored.HourlyRate != 6000 || len(mocks.DevRepo.Stored.Skills) != 2 {
		t.Fatalf("developer profile not updated: %+v", mocks.DevRepo.Stored)
	}
}

func TestMe_HealsMissingRows(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.AccRepo.Stored = &models.Account{ID: 1, Email: "dev@example.com", Role: models.RoleDeveloper}
	handler := newProfilesHandler(t, mocks)

	req := authedRequest(http.MethodGet, "/v1/profiles/me", nil, 1, models.RoleDeveloper, nil)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 200, got %d body=%s", res.StatusCode, string(data))
	}

	var resp struct {
		Profile   *models.Profile          `json:"profile"`
		Developer *models.DeveloperProfile `json:"developer"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Profile == nil || resp.Profile.ContactEmail != "dev@example.com" {
		t.Fatalf("expected a healed profile, got %+v", resp.Profile)
	}
	if resp.Developer == nil || resp.Developer.AccountID != 1 {
		t.Fatalf("expected the freshly created developer profile in the response, got %+v", resp.Developer)
	}
	if mocks.ProfRepo.Stored == nil || mocks.DevRepo.Stored == nil {
		t.Fatalf("missing rows were not created")
	}
}
