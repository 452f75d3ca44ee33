package api

import (
	"encoding/json"
	"net/http"
	"time"

	"jobtrack/internal/domain/models"
	"jobtrack/internal/lib/sl"

	"github.com/google/uuid"
)

const appliedDateLayout = "2006-01-02"

type createApplicationRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Description string `json:"description"`
	SalaryRange string `json:"salary_range"`
	Notes       string `json:"notes"`
	URL         string `json:"url"`
	AppliedDate string `json:"applied_date"`
}

type applicationResponse struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	SalaryRange string `json:"salary_range,omitempty"`
	Notes       string `json:"notes,omitempty"`
	URL         string `json:"url,omitempty"`
	AppliedDate string `json:"applied_date"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantFrom(r.Context())
	if !ok {
		writeForbidden(w)
		return
	}

	var req createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "body", "invalid JSON body")
		return
	}

	if req.Status == "" {
		req.Status = string(models.StatusApplied)
	}
	status, err := models.ParseApplicationStatus(req.Status)
	if err != nil {
		writeValidationError(w, "status", "must be one of applied, screening, interview, offer, rejected")
		return
	}

	appliedDate, err := time.Parse(appliedDateLayout, req.AppliedDate)
	if err != nil {
		writeValidationError(w, "applied_date", "must be a date in YYYY-MM-DD format")
		return
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:          uuid.NewString(),
		TenantID:    tenant.ID,
		Title:       req.Title,
		Company:     req.Company,
		Status:      status,
		Location:    req.Location,
		Description: req.Description,
		SalaryRange: req.SalaryRange,
		Notes:       req.Notes,
		URL:         req.URL,
		AppliedDate: appliedDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := app.Validate(); err != nil {
		writeValidationError(w, "body", err.Error())
		return
	}

	if err := s.apps.SaveApplication(r.Context(), app); err != nil {
		s.logger.Error("failed to save application", sl.Err(err))
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantFrom(r.Context())
	if !ok {
		writeForbidden(w)
		return
	}

	apps, err := s.apps.ApplicationsByTenant(r.Context(), tenant.ID)
	if err != nil {
		s.logger.Error("failed to list applications", sl.Err(err))
		s.writeServiceError(w, err)
		return
	}

	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationResponse(app))
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": out})
}

func toApplicationResponse(app *models.Application) applicationResponse {
	return applicationResponse{
		ID:          app.ID,
		TenantID:    app.TenantID,
		Title:       app.Title,
		Company:     app.Company,
		Status:      string(app.Status),
		Location:    app.Location,
		Description: app.Description,
		SalaryRange: app.SalaryRange,
		Notes:       app.Notes,
		URL:         app.URL,
		AppliedDate: app.AppliedDate.Format(appliedDateLayout),
		CreatedAt:   app.CreatedAt.Format(time.RFC3339),
	}
}
