package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/remote"
)

// FlexibleGoalService manages goals without a target time. They have no
// offline path and require connectivity.
type FlexibleGoalService interface {
	Create(ctx context.Context, title string) (model.FlexibleGoal, error)
	List(ctx context.Context) ([]model.FlexibleGoal, error)
	SetStatus(ctx context.Context, id string, status model.GoalStatus) error
	Delete(ctx context.Context, id string) error
}

type FlexibleGoalServiceImpl struct {
	deps Deps
}

var _ FlexibleGoalService = (*FlexibleGoalServiceImpl)(nil)

// NewFlexibleGoalService constructs FlexibleGoalService.
func NewFlexibleGoalService(deps Deps) *FlexibleGoalServiceImpl {
	return &FlexibleGoalServiceImpl{deps: deps}
}

// Create stores a new flexible goal remotely.
func (s *FlexibleGoalServiceImpl) Create(ctx context.Context, title string) (model.FlexibleGoal, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return model.FlexibleGoal{}, err
	}
	if title == "" {
		return model.FlexibleGoal{}, errors.New("validation: empty title")
	}
	if !s.deps.Probe.Online(ctx) {
		return model.FlexibleGoal{}, errs.ErrOffline
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionFlexibleGoals)
	if err != nil {
		return model.FlexibleGoal{}, err
	}
	now := s.deps.Clock.Now().UTC().Format(time.RFC3339)
	stored, err := coll.Insert(ctx, remote.Row{
		"user_id":    userID,
		"title":      title,
		"status":     string(model.StatusPending),
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return model.FlexibleGoal{}, err
	}
	return flexibleFromRow(stored), nil
}

// List returns the user's flexible goals, oldest first.
func (s *FlexibleGoalServiceImpl) List(ctx context.Context) ([]model.FlexibleGoal, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if !s.deps.Probe.Online(ctx) {
		return nil, errs.ErrOffline
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionFlexibleGoals)
	if err != nil {
		return nil, err
	}
	rows, err := coll.Select(ctx, nil,
		&remote.Order{Column: "created_at"},
		remote.Eq{Column: "user_id", Value: userID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]model.FlexibleGoal, 0, len(rows))
	for _, r := range rows {
		out = append(out, flexibleFromRow(r))
	}
	return out, nil
}

// SetStatus transitions a flexible goal's status.
func (s *FlexibleGoalServiceImpl) SetStatus(ctx context.Context, id string, status model.GoalStatus) error {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	switch status {
	case model.StatusPending, model.StatusSuccess, model.StatusFailure:
	default:
		return fmt.Errorf("validation: bad status %q", status)
	}
	if !s.deps.Probe.Online(ctx) {
		return errs.ErrOffline
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionFlexibleGoals)
	if err != nil {
		return err
	}
	patch := remote.Row{
		"status":     string(status),
		"updated_at": s.deps.Clock.Now().UTC().Format(time.RFC3339),
	}
	return coll.Update(ctx, patch,
		remote.Eq{Column: "id", Value: id},
		remote.Eq{Column: "user_id", Value: userID},
	)
}

// Delete removes the user's flexible goal.
func (s *FlexibleGoalServiceImpl) Delete(ctx context.Context, id string) error {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if !s.deps.Probe.Online(ctx) {
		return errs.ErrOffline
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionFlexibleGoals)
	if err != nil {
		return err
	}
	return coll.Delete(ctx,
		remote.Eq{Column: "id", Value: id},
		remote.Eq{Column: "user_id", Value: userID},
	)
}
