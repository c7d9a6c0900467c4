package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/notify"
	"github.com/daypact/daypact/internal/offline"
	"github.com/daypact/daypact/internal/remote"
)

// GoalInput carries the caller-supplied fields of a new daily goal.
type GoalInput struct {
	Title             string
	TargetTime        string // RFC 3339
	IsEssential       bool
	EssentialCategory string
}

// GoalService creates, checks, deletes and lists daily goals. Creation and
// checking fall back to the offline store without connectivity; deletion
// always goes to the remote store.
type GoalService interface {
	// Create stores a new goal and schedules its reminder.
	Create(ctx context.Context, in GoalInput) (model.Goal, error)
	// Check transitions a goal's status. Unknown offline ids report false.
	Check(ctx context.Context, goalID string, status model.GoalStatus) (bool, error)
	// Delete removes a remote goal and cancels its reminders.
	Delete(ctx context.Context, goalID string) error
	// ListByDate returns the user's goals for a date, remote and offline.
	ListByDate(ctx context.Context, date string) ([]model.Goal, error)
}

type GoalServiceImpl struct {
	deps    Deps
	sched   notify.Scheduler
	handles *notify.Handles
}

var _ GoalService = (*GoalServiceImpl)(nil)

// NewGoalService constructs GoalService with injected collaborators.
func NewGoalService(deps Deps, sched notify.Scheduler, handles *notify.Handles) *GoalServiceImpl {
	return &GoalServiceImpl{deps: deps, sched: sched, handles: handles}
}

// Create validates input, stores the goal remotely or offline depending on
// connectivity, and schedules a reminder at the target time.
func (s *GoalServiceImpl) Create(ctx context.Context, in GoalInput) (model.Goal, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return model.Goal{}, err
	}
	if in.Title == "" {
		return model.Goal{}, errors.New("validation: empty title")
	}
	if _, err := time.Parse(time.RFC3339, in.TargetTime); err != nil {
		return model.Goal{}, fmt.Errorf("validation: bad target_time: %w", err)
	}

	var goal model.Goal
	if s.deps.Probe.Online(ctx) {
		goal, err = s.createRemote(ctx, userID, in)
	} else {
		goal, err = s.createOffline(ctx, userID, in)
	}
	if err != nil {
		return model.Goal{}, err
	}

	s.scheduleReminder(ctx, goal)
	return goal, nil
}

func (s *GoalServiceImpl) createRemote(ctx context.Context, userID string, in GoalInput) (model.Goal, error) {
	goals, err := s.deps.Remote.Collection(remote.CollectionGoals)
	if err != nil {
		return model.Goal{}, err
	}
	now := s.deps.Clock.Now().UTC().Format(time.RFC3339)
	row := remote.Row{
		"user_id":      userID,
		"title":        in.Title,
		"target_time":  in.TargetTime,
		"status":       string(model.StatusPending),
		"is_essential": in.IsEssential,
		"created_at":   now,
		"updated_at":   now,
	}
	if in.EssentialCategory != "" {
		row["essential_category"] = in.EssentialCategory
	}
	stored, err := goals.Insert(ctx, row)
	if err != nil {
		return model.Goal{}, err
	}
	return goalFromRow(stored), nil
}

func (s *GoalServiceImpl) createOffline(ctx context.Context, userID string, in GoalInput) (model.Goal, error) {
	og, err := s.deps.Offline.CreateGoal(ctx, offline.GoalDraft{
		UserID:            userID,
		Title:             in.Title,
		TargetTime:        in.TargetTime,
		IsEssential:       in.IsEssential,
		EssentialCategory: in.EssentialCategory,
	})
	if err != nil {
		return model.Goal{}, err
	}
	return goalFromOffline(og), nil
}

// Check transitions the goal's status remotely when online, otherwise in the
// offline store.
func (s *GoalServiceImpl) Check(ctx context.Context, goalID string, status model.GoalStatus) (bool, error) {
	if _, err := s.deps.Sessions.CurrentUserID(ctx); err != nil {
		return false, err
	}
	switch status {
	case model.StatusPending, model.StatusSuccess, model.StatusFailure:
	default:
		return false, fmt.Errorf("validation: bad status %q", status)
	}

	if !s.deps.Probe.Online(ctx) {
		return s.deps.Offline.CheckGoal(ctx, goalID, status)
	}

	goals, err := s.deps.Remote.Collection(remote.CollectionGoals)
	if err != nil {
		return false, err
	}
	patch := remote.Row{
		"status":     string(status),
		"updated_at": s.deps.Clock.Now().UTC().Format(time.RFC3339),
	}
	if err := goals.Update(ctx, patch, remote.Eq{Column: "id", Value: goalID}); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the remote row and cancels any scheduled reminders.
// Deletion bypasses the offline path.
func (s *GoalServiceImpl) Delete(ctx context.Context, goalID string) error {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	goals, err := s.deps.Remote.Collection(remote.CollectionGoals)
	if err != nil {
		return err
	}
	if err := goals.Delete(ctx,
		remote.Eq{Column: "id", Value: goalID},
		remote.Eq{Column: "user_id", Value: userID},
	); err != nil {
		return err
	}

	for _, h := range s.handles.List(ctx, goalID) {
		if err := s.sched.Cancel(ctx, h); err != nil {
			s.deps.Log.Warn("cancel reminder", zap.String("goal_id", goalID), zap.Error(err))
		}
	}
	return s.handles.Clear(ctx, goalID)
}

// ListByDate merges the user's remote goals (when online) with offline ones,
// filtered to the given date (today when empty).
func (s *GoalServiceImpl) ListByDate(ctx context.Context, date string) ([]model.Goal, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if date == "" {
		date = s.deps.Clock.Today()
	}

	out := []model.Goal{}
	if s.deps.Probe.Online(ctx) {
		goals, err := s.deps.Remote.Collection(remote.CollectionGoals)
		if err != nil {
			return nil, err
		}
		rows, err := goals.Select(ctx, nil,
			&remote.Order{Column: "target_time"},
			remote.Eq{Column: "user_id", Value: userID},
		)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if g := goalFromRow(r); onDate(g.TargetTime, date) {
				out = append(out, g)
			}
		}
	}
	for _, og := range s.deps.Offline.Goals(ctx) {
		if og.UserID == userID && onDate(og.TargetTime, date) {
			out = append(out, goalFromOffline(og))
		}
	}
	return out, nil
}

func (s *GoalServiceImpl) scheduleReminder(ctx context.Context, goal model.Goal) {
	at, err := time.Parse(time.RFC3339, goal.TargetTime)
	if err != nil {
		return
	}
	handle, err := s.sched.Schedule(ctx, at, goal.Title)
	if err != nil {
		s.deps.Log.Warn("schedule reminder", zap.String("goal_id", goal.ID), zap.Error(err))
		return
	}
	if err := s.handles.Add(ctx, goal.ID, handle); err != nil {
		s.deps.Log.Warn("record reminder handle", zap.String("goal_id", goal.ID), zap.Error(err))
	}
}
