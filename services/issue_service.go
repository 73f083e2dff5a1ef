package services

import (
	"context"
	"strings"

	"citycompass/models"
	"citycompass/repository"
)

const defaultMaxLimit = 200

// IssueService is the public face of the issue repository: it validates
// submissions and bounds listings.
type IssueService struct {
	store    repository.Store
	maxLimit int
	now      Clock
}

func NewIssueService(store repository.Store, maxLimit int) *IssueService {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	return &IssueService{store: store, maxLimit: maxLimit, now: SystemClock}
}

// WithClock replaces the time source.
func (s *IssueService) WithClock(now Clock) *IssueService {
	s.now = now
	return s
}

// Create validates and persists a citizen submission. The issue always
// starts pending; priority is normalised, never rejected.
func (s *IssueService) Create(ctx context.Context, in models.NewIssue) (*models.Issue, error) {
	for _, f := range []*string{&in.Category, &in.Title, &in.Description, &in.Location} {
		*f = strings.TrimSpace(*f)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.now()
	issue := &models.Issue{
		Category:    in.Category,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		Status:      models.Pending,
		Priority:    models.NormalizePriority(in.Priority),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Issues().Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) Get(ctx context.Context, id uint) (*models.Issue, error) {
	return s.store.Issues().FindByID(ctx, id)
}

// List pages through issues newest first. A non-positive limit falls back
// to defaultLimit; limits above the configured maximum, or no usable limit
// at all, become the maximum.
func (s *IssueService) List(ctx context.Context, f models.IssueFilter, defaultLimit int) ([]models.Issue, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Status = models.IssueStatus(strings.TrimSpace(string(f.Status)))
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit <= 0 || f.Limit > s.maxLimit {
		f.Limit = s.maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.Issues().List(ctx, f)
}

// Stats is computed live on every call.
func (s *IssueService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.store.Issues().Stats(ctx)
}

// History returns the audit trail of an issue, oldest first.
func (s *IssueService) History(ctx context.Context, id uint) ([]models.IssueUpdate, error) {
	if _, err := s.store.Issues().FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Issues().ListUpdates(ctx, id)
}
