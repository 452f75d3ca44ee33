package models

import (
	"errors"
	"fmt"
	"time"
)

// ApplicationStatus tracks where a job application sits in the pipeline.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusScreening ApplicationStatus = "screening"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

// ParseApplicationStatus validates a status read from storage or input.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case StatusApplied, StatusScreening, StatusInterview, StatusOffer, StatusRejected:
		return ApplicationStatus(s), nil
	}
	return "", fmt.Errorf("unknown application status: %q", s)
}

// Application is a job application owned by a tenant.
type Application struct {
	ID          string
	TenantID    string
	Title       string
	Company     string
	Status      ApplicationStatus
	Location    string
	Description string
	SalaryRange string
	Notes       string
	URL         string
	AppliedDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the required fields and the status enum.
func (a *Application) Validate() error {
	if a.Title == "" {
		return errors.New("title is required")
	}
	if a.Company == "" {
		return errors.New("company is required")
	}
	if a.Location == "" {
		return errors.New("location is required")
	}
	if a.AppliedDate.IsZero() {
		return errors.New("applied_date is required")
	}
	if _, err := ParseApplicationStatus(string(a.Status)); err != nil {
		return err
	}
	return nil
}
