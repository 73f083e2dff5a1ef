package services

import (
	"context"
	"strings"

	"citycompass/apperror"
	"citycompass/models"
	"citycompass/repository"
)

// TransitionPolicy decides whether an issue may move from one status to
// another.
type TransitionPolicy interface {
	Allow(from, to models.IssueStatus) error
}

// Unrestricted lets an authorised department set any recognised status in
// any order. This is the default.
type Unrestricted struct{}

func (Unrestricted) Allow(from, to models.IssueStatus) error { return nil }

// ForwardOnly allows exactly one step along pending -> in-progress ->
// resolved. Resolved is terminal except through Reopen.
type ForwardOnly struct{}

func (ForwardOnly) Allow(from, to models.IssueStatus) error {
	if from == models.Resolved {
		return apperror.Validation("issue is resolved; reopen it first")
	}
	if to.Rank() != from.Rank()+1 {
		return apperror.Validation("cannot move issue from %s to %s", from, to)
	}
	return nil
}

// TransitionEngine moves issues through their lifecycle. Every accepted
// transition updates the issue and appends its audit row in one
// transaction.
type TransitionEngine struct {
	store  repository.Store
	policy TransitionPolicy
	now    Clock
}

func NewTransitionEngine(store repository.Store, strict bool) *TransitionEngine {
	var policy TransitionPolicy = Unrestricted{}
	if strict {
		policy = ForwardOnly{}
	}
	return &TransitionEngine{store: store, policy: policy, now: SystemClock}
}

// WithClock replaces the time source.
func (e *TransitionEngine) WithClock(now Clock) *TransitionEngine {
	e.now = now
	return e
}

// Transition sets the status of issue id on behalf of the department
// actorID and records the change.
func (e *TransitionEngine) Transition(ctx context.Context, id, actorID uint, status, comment string) (*models.IssueUpdate, *models.Issue, error) {
	if strings.TrimSpace(status) == "" {
		return nil, nil, apperror.Validation("Status is required")
	}
	to, ok := models.ParseStatus(status)
	if !ok {
		return nil, nil, apperror.Validation("invalid status %q", status)
	}
	return e.apply(ctx, id, actorID, to, comment, e.policy.Allow)
}

// Reopen moves a resolved issue back to pending. It is the only way out
// of resolved under the forward-only policy.
func (e *TransitionEngine) Reopen(ctx context.Context, id, actorID uint, comment string) (*models.IssueUpdate, *models.Issue, error) {
	return e.apply(ctx, id, actorID, models.Pending, comment, func(from, _ models.IssueStatus) error {
		if from != models.Resolved {
			return apperror.Validation("only resolved issues can be reopened")
		}
		return nil
	})
}

func (e *TransitionEngine) apply(ctx context.Context, id, actorID uint, to models.IssueStatus, comment string,
	allow func(from, to models.IssueStatus) error) (*models.IssueUpdate, *models.Issue, error) {
	var (
		update *models.IssueUpdate
		issue  *models.Issue
	)
	err := e.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		current, err := tx.Issues().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := allow(current.Status, to); err != nil {
			return err
		}

		at := after(current.UpdatedAt, e.now())
		issue, err = tx.Issues().UpdateStatus(ctx, id, to, at)
		if err != nil {
			return err
		}
		update = &models.IssueUpdate{
			IssueID:      id,
			DepartmentID: actorID,
			Status:       to,
			Comment:      strings.TrimSpace(comment),
			CreatedAt:    at,
		}
		return tx.Issues().AppendUpdate(ctx, update)
	})
	if err != nil {
		return nil, nil, err
	}
	return update, issue, nil
}
