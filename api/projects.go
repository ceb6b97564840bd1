package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mfreitas/devmarket/internal/validate"
	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

var projectStatuses = map[string]bool{
	models.ProjectStatusOpen:       true,
	models.ProjectStatusInProgress: true,
	models.ProjectStatusCompleted:  true,
	models.ProjectStatusCancelled:  true,
	models.ProjectStatusOnHold:     true,
}

type ProjectsHandler struct {
	projectRepo repository.ProjectRepo
	validator   *validate.Validator
}

func NewProjectsHandler(pr repository.ProjectRepo, v *validate.Validator) *ProjectsHandler {
	return &ProjectsHandler{projectRepo: pr, validator: v}
}

type projectRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ProjectType    string   `json:"project_type"`
	BudgetMin      int64    `json:"budget_min"`
	BudgetMax      int64    `json:"budget_max"`
	Timeline       string   `json:"timeline"`
	RequiredSkills []string `json:"required_skills"`
	Complexity     string   `json:"complexity"`
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, role := accountFromContext(ctx)
	if role != models.RoleClient {
		writeError(w, "only clients can post projects", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validator.Project(ctx, body); err != nil {
		writeError(w, fmt.Sprintf("invalid project: %v", err), http.StatusUnprocessableEntity)
		return
	}

	var req projectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.BudgetMax > 0 && req.BudgetMax < req.BudgetMin {
		writeError(w, "budget_max must not be below budget_min", http.StatusUnprocessableEntity)
		return
	}

	project := models.Project{
		ClientID:       accountID,
		Title:          req.Title,
		Description:    req.Description,
		ProjectType:    req.ProjectType,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		Timeline:       req.Timeline,
		RequiredSkills: req.RequiredSkills,
		Complexity:     req.Complexity,
		Status:         models.ProjectStatusOpen,
	}
	id, err := h.projectRepo.CreateProject(ctx, &project)
	if err != nil {
		writeError(w, "failed to create project", http.StatusInternalServerError)
		return
	}
	project.ID = id

	writeJSON(w, project, http.StatusCreated)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid project id", http.StatusBadRequest)
		return
	}

	project, err := h.projectRepo.GetProjectByID(r.Context(), id)
	if err != nil {
		writeError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project == nil {
		writeError(w, "project not found", http.StatusNotFound)
		return
	}

	writeJSON(w, project, http.StatusOK)
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.ProjectFilter{
		Status: q.Get("status"),
		Skill:  q.Get("skill"),
		Limit:  50,
	}
	if f.Status != "" && !projectStatuses[f.Status] {
		writeError(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	if c := q.Get("client_id"); c != "" {
		if v, err := strconv.ParseInt(c, 10, 64); err == nil && v > 0 {
			f.ClientID = v
		}
	}
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			f.Limit = v
		}
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			f.Offset = v
		}
	}

	projects, err := h.projectRepo.ListProjects(r.Context(), f)
	if err != nil {
		writeError(w, "failed to list projects", http.StatusInternalServerError)
		return
	}
	total, err := h.projectRepo.CountProjects(r.Context(), f)
	if err != nil {
		writeError(w, "failed to count projects", http.StatusInternalServerError)
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}

	resp := map[string]any{
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
		"items":  projects,
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid project id", http.StatusBadRequest)
		return
	}

	project, err := h.projectRepo.GetProjectByID(ctx, id)
	if err != nil {
		writeError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project == nil {
		writeError(w, "project not found", http.StatusNotFound)
		return
	}
	if project.ClientID != accountID {
		writeError(w, "only the project owner can edit it", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validator.Project(ctx, body); err != nil {
		writeError(w, fmt.Sprintf("invalid project: %v", err), http.StatusUnprocessableEntity)
		return
	}

	var req projectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	project.Title = req.Title
	project.Description = req.Description
	project.ProjectType = req.ProjectType
	project.BudgetMin = req.BudgetMin
	project.BudgetMax = req.BudgetMax
	project.Timeline = req.Timeline
	project.RequiredSkills = req.RequiredSkills
	project.Complexity = req.Complexity

	if err := h.projectRepo.UpdateProject(ctx, project); err != nil {
		writeError(w, "failed to update project", http.StatusInternalServerError)
		return
	}

	writeJSON(w, project, http.StatusOK)
}

type projectStatusRequest struct {
	Status string `json:"status"`
}

func (h *ProjectsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, _ := accountFromContext(ctx)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req projectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !projectStatuses[req.Status] {
		writeError(w, "invalid status", http.StatusUnprocessableEntity)
		return
	}

	project, err := h.projectRepo.GetProjectByID(ctx, id)
	if err != nil {
		writeError(w, "failed to load project", http.StatusInternalServerError)
		return
	}
	if project == nil {
		writeError(w, "project not found", http.StatusNotFound)
		return
	}
	if project.ClientID != accountID {
		writeError(w, "only the project owner can change its status", http.StatusForbidden)
		return
	}

	if err := h.projectRepo.UpdateProjectStatus(ctx, id, req.Status); err != nil {
		writeError(w, "failed to update status", http.StatusInternalServerError)
		return
	}
	project.Status = req.Status

	writeJSON(w, project, http.StatusOK)
}
