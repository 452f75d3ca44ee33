package sqlite

import (
	"context"
	"fmt"

	"jobtrack/internal/domain/models"
)

// SaveApplication inserts a job application owned by a tenant.
func (s *Storage) SaveApplication(ctx context.Context, app *models.Application) error {
	const op = "storage.sqlite.SaveApplication"
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications
		 (id, tenant_id, title, company, status, location, description, salary_range, notes, url, applied_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.TenantID, app.Title, app.Company, string(app.Status),
		app.Location, app.Description, app.SalaryRange, app.Notes, app.URL,
		app.AppliedDate, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApplicationsByTenant lists a tenant's applications, newest first.
func (s *Storage) ApplicationsByTenant(ctx context.Context, tenantID string) ([]*models.Application, error) {
	const op = "storage.sqlite.ApplicationsByTenant"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, title, company, status, location, description, salary_range, notes, url, applied_date, created_at, updated_at
		 FROM applications WHERE tenant_id = ? ORDER BY applied_date DESC, created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		var a models.Application
		var status string
		err := rows.Scan(&a.ID, &a.TenantID, &a.Title, &a.Company, &status,
			&a.Location, &a.Description, &a.SalaryRange, &a.Notes, &a.URL,
			&a.AppliedDate, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Status, err = models.ParseApplicationStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		apps = append(apps, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return apps, nil
}
