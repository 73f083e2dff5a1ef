package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"citycompass/apperror"
	"citycompass/models"
	"citycompass/repository"
)

var seedDepartments = []Registration{
	{
		Name: "Admin Department", Email: "admin@citycompass.gov", Code: "ADMIN001", Password: "admin123",
		Category: "Administration", Address: "City Hall", Phone: "555-1234",
	},
	{
		Name: "Public Works Department", Email: "publicworks@citycompass.gov", Code: "PWD001", Password: "publicworks123",
		Category: "Roads & Potholes", Address: "123 Main Street, City Hall", Phone: "555-1001",
	},
	{
		Name: "Sanitation Department", Email: "sanitation@citycompass.gov", Code: "SND002", Password: "sanitation123",
		Category: "Waste Management", Address: "456 Clean Street", Phone: "555-1002",
	},
	{
		Name: "Water Department", Email: "water@citycompass.gov", Code: "WTD003", Password: "water123",
		Category: "Water Supply", Address: "789 Water Avenue", Phone: "555-1003",
	},
}

var seedIssues = []models.Issue{
	{
		Category: "Roads & Potholes", Title: "Large pothole on Main St",
		Description: "There is a large pothole that needs immediate attention",
		Location:    "Main St & 5th Ave", Status: models.Pending, Priority: models.High,
	},
	{
		Category: "Waste Management", Title: "Overflowing trash bin",
		Description: "Public trash bin has been overflowing for 2 days",
		Location:    "Central Park", Status: models.InProgress, Priority: models.Normal,
	},
	{
		Category: "Street Lighting", Title: "Broken street light",
		Description: "Street light has been out for a week",
		Location:    "Oak Street", Status: models.Resolved, Priority: models.Low,
	},
	{
		Category: "Water Supply", Title: "Water leak on sidewalk",
		Description: "Constant water leak from underground pipe",
		Location:    "3rd Ave & Elm St", Status: models.Pending, Priority: models.High,
	},
}

// Seed creates the bootstrap departments (verified) and, on an empty
// database, a handful of sample issues. Running it again changes nothing.
//
// Sample issues are inserted with their final status and no audit rows.
func Seed(ctx context.Context, store repository.Store) error {
	creds := NewCredentialStore(store.Departments())
	for _, reg := range seedDepartments {
		_, err := store.Departments().FindByCode(ctx, reg.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		reg.Verified = true
		if _, err := creds.Register(ctx, reg); err != nil {
			return err
		}
		slog.Info("seeded department", "department_id", reg.Code)
	}

	n, err := store.Issues().Count(ctx, models.IssueFilter{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		base := SystemClock().Add(-time.Duration(len(seedIssues)) * time.Hour)
		for i, tmpl := range seedIssues {
			issue := tmpl
			issue.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			issue.UpdatedAt = issue.CreatedAt
			if err := tx.Issues().Create(ctx, &issue); err != nil {
				return err
			}
		}
		slog.Info("seeded sample issues", "count", len(seedIssues))
		return nil
	})
}
