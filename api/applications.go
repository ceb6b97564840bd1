package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mfreitas/devmarket/internal/jobs"
	"github.com/mfreitas/devmarket/internal/reconcile"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

// SweepEnqueuer schedules a reconcile sweep; satisfied by jobs.WorkerPool.
type SweepEnqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority, maxAttempts int) (int64, error)
}

type ApplicationsHandler struct {
	reconciler  *reconcile.Reconciler
	appRepo     repository.ApplicationRepo
	projectRepo repository.ProjectRepo
	sweeper     SweepEnqueuer
}

func NewApplicationsHandler(rec *reconcile.Reconciler, ar repository.ApplicationRepo, pr repository.ProjectRepo, sweeper SweepEnqueuer) *ApplicationsHandler {
	return &ApplicationsHandler{reconciler: rec, appRepo: ar, projectRepo: pr, sweeper: sweeper}
}

type applyRequest struct {
	Message string `json:"message"`
}

// Apply submits an application to a project and runs the full
// recorder/resolver/emitter flow. A degraded outcome (application stored but
// conversation or notification missing) is reported honestly and repaired by
// an immediately enqueued sweep.
func (h *ApplicationsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, role := accountFromContext(ctx)
	if role != models.RoleDeveloper {
		writeError(w, "only developers can apply", http.StatusForbidden)
		return
	}

	projectID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || projectID <= 0 {
		writeError(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	result, err := h.reconciler.Apply(ctx, projectID, accountID, req.Message)
	switch {
	case errors.Is(err, reconcile.ErrProjectNotFound):
		writeError(w, "project not found", http.StatusNotFound)
		return
	case errors.Is(err, reconcile.ErrSelfApplication):
		writeError(w, "you cannot apply to your own project", http.StatusUnprocessableEntity)
		return
	case errors.Is(err, reconcile.ErrProjectClosed):
		writeError(w, "project is not open for applications", http.StatusUnprocessableEntity)
		return
	case err != nil:
		writeError(w, "failed to submit application", http.StatusInternalServerError)
		return
	}

	if result.AlreadyApplied {
		writeJSON(w, result, http.StatusConflict)
		return
	}

	if result.Incomplete {
		// the application row exists but the follow-up steps failed;
		// schedule a sweep to finish them
		if _, err := h.sweeper.Enqueue(ctx, jobs.TypeReconcileSweep, nil, 50, 5); err != nil {
			logger.Error("enqueue sweep", "err", err)
		}
	}

	writeJSON(w, result, http.StatusCreated)
}

// ListForProject returns the applications for a project the caller owns.
func (h *ApplicationsHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	projectID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || projectID <= 0 {
		writeError(w, "invalid project id", http.StatusBadRequest)
		return
	}

	project, err := h.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		writeError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project == nil {
		writeError(w, "project not found", http.StatusNotFound)
		return
	}
	if project.ClientID != accountID {
		writeError(w, "only the project owner can list applications", http.StatusForbidden)
		return
	}

	apps, err := h.appRepo.ListApplicationsByProject(ctx, projectID)
	if err != nil {
		writeError(w, "failed to list applications", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	writeJSON(w, map[string]any{"items": apps}, http.StatusOK)
}

// ListMine returns the authenticated developer's applications.
func (h *ApplicationsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, role := accountFromContext(ctx)
	if role != models.RoleDeveloper {
		writeError(w, "only developers have applications", http.StatusForbidden)
		return
	}

	apps, err := h.appRepo.ListApplicationsByDeveloper(ctx, accountID)
	if err != nil {
		writeError(w, "failed to list applications", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	writeJSON(w, map[string]any{"items": apps}, http.StatusOK)
}

type decideRequest struct {
	Status string `json:"status"`
}

// Decide lets the project owner accept or reject a pending application.
func (h *ApplicationsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	applicationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || applicationID <= 0 {
		writeError(w, "invalid application id", http.StatusBadRequest)
		return
	}

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	app, err := h.reconciler.Decide(ctx, applicationID, accountID, req.Status)
	switch {
	case errors.Is(err, reconcile.ErrApplicationNotFound), errors.Is(err, reconcile.ErrProjectNotFound):
		writeError(w, "application not found", http.StatusNotFound)
		return
	case errors.Is(err, reconcile.ErrNotProjectOwner):
		writeError(w, "only the project owner may decide applications", http.StatusForbidden)
		return
	case errors.Is(err, reconcile.ErrInvalidTransition):
		writeError(w, "application status can only move from pending to accepted or rejected", http.StatusConflict)
		return
	case err != nil:
		writeError(w, "failed to update application", http.StatusInternalServerError)
		return
	}

	writeJSON(w, app, http.StatusOK)
}
