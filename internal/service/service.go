// Package service contains the online-first operations the app's business
// logic calls. Writes route through the offline core when there is no
// connectivity; reads merge remote rows with local offline entities.
package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/clock"
	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/offline"
	"github.com/daypact/daypact/internal/remote"
)

// Sessions resolves the signed-in user.
type Sessions interface {
	// CurrentUserID returns the user id, or errs.ErrSignedOut.
	CurrentUserID(ctx context.Context) (string, error)
}

// ConnectivityProbe reports current outbound reachability.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// Deps bundles the collaborators shared by every service.
type Deps struct {
	Remote   remote.Store
	Offline  *offline.Store
	Probe    ConnectivityProbe
	Sessions Sessions
	Clock    clock.Clock
	Log      *zap.Logger
}

// asString renders a remote row value as the string the domain types carry.
// pgx yields uuids as [16]byte and timestamps as time.Time.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case [16]byte:
		return uuid.UUID(t).String()
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asDate renders a date column as YYYY-MM-DD; pgx yields dates as time.Time.
func asDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.DateOnly)
	}
	return asString(v)
}

func goalFromRow(r remote.Row) model.Goal {
	return model.Goal{
		ID:                asString(r["id"]),
		UserID:            asString(r["user_id"]),
		Title:             asString(r["title"]),
		TargetTime:        asString(r["target_time"]),
		Status:            model.GoalStatus(asString(r["status"])),
		IsEssential:       asBool(r["is_essential"]),
		EssentialCategory: asString(r["essential_category"]),
		CreatedAt:         asString(r["created_at"]),
		UpdatedAt:         asString(r["updated_at"]),
	}
}

func goalFromOffline(g model.OfflineGoal) model.Goal {
	return model.Goal{
		ID:                g.ID,
		UserID:            g.UserID,
		Title:             g.Title,
		TargetTime:        g.TargetTime,
		Status:            g.Status,
		IsEssential:       g.IsEssential,
		EssentialCategory: g.EssentialCategory,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}

func retrospectFromRow(r remote.Row) model.Retrospect {
	return model.Retrospect{
		ID:        asString(r["id"]),
		UserID:    asString(r["user_id"]),
		Date:      asDate(r["date"]),
		Content:   asString(r["content"]),
		CreatedAt: asString(r["created_at"]),
		UpdatedAt: asString(r["updated_at"]),
	}
}

func resolutionFromRow(r remote.Row) model.DailyResolution {
	return model.DailyResolution{
		ID:        asString(r["id"]),
		UserID:    asString(r["user_id"]),
		Content:   asString(r["content"]),
		Date:      asDate(r["date"]),
		CreatedAt: asString(r["created_at"]),
	}
}

func flexibleFromRow(r remote.Row) model.FlexibleGoal {
	return model.FlexibleGoal{
		ID:        asString(r["id"]),
		UserID:    asString(r["user_id"]),
		Title:     asString(r["title"]),
		Status:    model.GoalStatus(asString(r["status"])),
		CreatedAt: asString(r["created_at"]),
		UpdatedAt: asString(r["updated_at"]),
	}
}

// onDate reports whether an RFC 3339 target time falls on the given
// YYYY-MM-DD date, judged in the timestamp's own offset.
func onDate(targetTime, date string) bool {
	t, err := time.Parse(time.RFC3339, targetTime)
	if err != nil {
		return false
	}
	return t.Format(time.DateOnly) == date
}
