package service

import (
	"context"
	"errors"
	"time"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/offline"
	"github.com/daypact/daypact/internal/remote"
)

// RetrospectInput carries the caller-supplied fields of a retrospect.
// Date defaults to today in the configured time reference.
type RetrospectInput struct {
	Date    string // YYYY-MM-DD
	Content string
}

// RetrospectService writes and reads the user's daily retrospective. Online
// writes upsert by (user, date); offline writes go through the offline store
// and reconcile later.
type RetrospectService interface {
	Write(ctx context.Context, in RetrospectInput) (model.Retrospect, error)
	Get(ctx context.Context, date string) (model.Retrospect, error)
}

type RetrospectServiceImpl struct {
	deps Deps
}

var _ RetrospectService = (*RetrospectServiceImpl)(nil)

// NewRetrospectService constructs RetrospectService.
func NewRetrospectService(deps Deps) *RetrospectServiceImpl {
	return &RetrospectServiceImpl{deps: deps}
}

// Write stores the retrospect for the given date, replacing an existing one
// when online.
func (s *RetrospectServiceImpl) Write(ctx context.Context, in RetrospectInput) (model.Retrospect, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return model.Retrospect{}, err
	}
	if in.Content == "" {
		return model.Retrospect{}, errors.New("validation: empty content")
	}
	date := in.Date
	if date == "" {
		date = s.deps.Clock.Today()
	}

	if !s.deps.Probe.Online(ctx) {
		or, err := s.deps.Offline.CreateRetrospect(ctx, offline.RetrospectDraft{
			UserID:  userID,
			Date:    date,
			Content: in.Content,
		})
		if err != nil {
			return model.Retrospect{}, err
		}
		return model.Retrospect{
			ID:        or.ID,
			UserID:    or.UserID,
			Date:      or.Date,
			Content:   or.Content,
			CreatedAt: or.CreatedAt,
			UpdatedAt: or.UpdatedAt,
		}, nil
	}

	return s.upsertRemote(ctx, userID, date, in.Content)
}

func (s *RetrospectServiceImpl) upsertRemote(ctx context.Context, userID, date, content string) (model.Retrospect, error) {
	coll, err := s.deps.Remote.Collection(remote.CollectionRetrospects)
	if err != nil {
		return model.Retrospect{}, err
	}
	now := s.deps.Clock.Now().UTC().Format(time.RFC3339)

	existing, err := coll.Select(ctx, []string{"id"}, nil,
		remote.Eq{Column: "user_id", Value: userID},
		remote.Eq{Column: "date", Value: date},
	)
	if err != nil {
		return model.Retrospect{}, err
	}

	if len(existing) > 0 {
		id := asString(existing[0]["id"])
		patch := remote.Row{"content": content, "updated_at": now}
		if err := coll.Update(ctx, patch, remote.Eq{Column: "id", Value: id}); err != nil {
			return model.Retrospect{}, err
		}
		return model.Retrospect{ID: id, UserID: userID, Date: date, Content: content, UpdatedAt: now}, nil
	}

	stored, err := coll.Insert(ctx, remote.Row{
		"user_id":    userID,
		"date":       date,
		"content":    content,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return model.Retrospect{}, err
	}
	return retrospectFromRow(stored), nil
}

// Get returns the retrospect for a date (today when empty), preferring the
// remote row and falling back to offline entities; errs.ErrNotFound when
// neither has one.
func (s *RetrospectServiceImpl) Get(ctx context.Context, date string) (model.Retrospect, error) {
	userID, err := s.deps.Sessions.CurrentUserID(ctx)
	if err != nil {
		return model.Retrospect{}, err
	}
	if date == "" {
		date = s.deps.Clock.Today()
	}

	if s.deps.Probe.Online(ctx) {
		coll, err := s.deps.Remote.Collection(remote.CollectionRetrospects)
		if err != nil {
			return model.Retrospect{}, err
		}
		rows, err := coll.Select(ctx, nil, nil,
			remote.Eq{Column: "user_id", Value: userID},
			remote.Eq{Column: "date", Value: date},
		)
		if err != nil {
			return model.Retrospect{}, err
		}
		if len(rows) > 0 {
			return retrospectFromRow(rows[0]), nil
		}
	}

	for _, or := range s.deps.Offline.Retrospects(ctx) {
		if or.UserID == userID && or.Date == date {
			return model.Retrospect{
				ID:        or.ID,
				UserID:    or.UserID,
				Date:      or.Date,
				Content:   or.Content,
				CreatedAt: or.CreatedAt,
				UpdatedAt: or.UpdatedAt,
			}, nil
		}
	}
	return model.Retrospect{}, errs.ErrNotFound
}
