package service

import (
	"context"
	"errors"
	"time"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/remote"
)

// ResolutionService posts and reads the shared daily-resolution feed. The
// feed is a social feature: it is remote-only and requires connectivity.
type ResolutionService interface {
	// Post shares a resolution for today.
	Post(ctx context.Context, content string) (model.DailyResolution, error)
	// ListForDate returns every user's resolutions for a date, newest first.
	ListForDate(ctx context.Context, date string) ([]model.DailyResolution, error)
	// Delete removes one of the caller's own resolutions.
	Delete(ctx context.Context, id string) error
}

type ResolutionServiceImpl struct {
	deps Deps
}

var _ ResolutionService = (*ResolutionServiceImpl)(nil)

// NewResolutionService constructs ResolutionService.
func NewResolutionService(deps Deps) *ResolutionServiceImpl {
	return &ResolutionServiceImpl{deps: deps}
}

// Post shares a resolution for today, or errs.ErrOffline without connectivity.
func (s *ResolutionServiceImpl) Post(ctx context.Context, content string) (model.DailyResolution, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return model.DailyResolution{}, err
	}
	if content == "" {
		return model.DailyResolution{}, errors.New("validation: empty content")
	}
	if !s.deps.Probe.Online(ctx) {
		return model.DailyResolution{}, errs.ErrOffline
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionDailyResolutions)
	if err != nil {
		return model.DailyResolution{}, err
	}
	stored, err := coll.Insert(ctx, remote.Row{
		"user_id":    userID,
		"content":    content,
		"date":       s.deps.Clock.Today(),
		"created_at": s.deps.Clock.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return model.DailyResolution{}, err
	}
	return resolutionFromRow(stored), nil
}

// ListForDate returns the shared feed for a date (today when empty).
func (s *ResolutionServiceImpl) ListForDate(ctx context.Context, date string) ([]model.DailyResolution, error) {
	if _, err := s.deps.Sessions.CurrentUserID(ctx); err != nil {
		return nil, err
	}
	if !s.deps.Probe.Online(ctx) {
		return nil, errs.ErrOffline
	}
	if date == "" {
		date = s.deps.Clock.Today()
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionDailyResolutions)
	if err != nil {
		return nil, err
	}
	rows, err := coll.Select(ctx, nil,
		&remote.Order{Column: "created_at", Desc: true},
		remote.Eq{Column: "date", Value: date},
	)
	if err != nil {
		return nil, err
	}
	out := make([]model.DailyResolution, 0, len(rows))
	for _, r := range rows {
		out = append(out, resolutionFromRow(r))
	}
	return out, nil
}

// Delete removes the caller's resolution; the user filter keeps one user
// from deleting another's post.
func (s *ResolutionServiceImpl) Delete(ctx context.Context, id string) error {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if !s.deps.Probe.Online(ctx) {
		return errs.ErrOffline
	}

	coll, err := s.deps.Remote.Collection(remote.CollectionDailyResolutions)
	if err != nil {
		return err
	}
	return coll.Delete(ctx,
		remote.Eq{Column: "id", Value: id},
		remote.Eq{Column: "user_id", Value: userID},
	)
}
