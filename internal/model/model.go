// Package model defines domain entities used by services and the offline core.
package model

import "encoding/json"

// GoalStatus is the check state of a daily goal.
type GoalStatus string

const (
	StatusPending GoalStatus = "pending"
	StatusSuccess GoalStatus = "success"
	StatusFailure GoalStatus = "failure"
)

// SyncItemType names the mutation a queued item replays remotely.
type SyncItemType string

const (
	SyncCreateGoal       SyncItemType = "create_goal"
	SyncUpdateGoal       SyncItemType = "update_goal"
	SyncCreateRetrospect SyncItemType = "create_retrospect"
)

// OfflineGoal is a goal created or mutated without connectivity. Its id is
// provisional ("offline_<millis>"); the remote store assigns its own identity
// once the creation replays.
type OfflineGoal struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Title             string     `json:"title"`
	TargetTime        string     `json:"target_time"`
	Status            GoalStatus `json:"status"`
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
	IsEssential       bool       `json:"is_essential"`
	EssentialCategory string     `json:"essential_category,omitempty"`
}

// OfflineRetrospect is a journal entry written without connectivity.
type OfflineRetrospect struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PendingSyncItem is one unit of replayable work awaiting remote delivery.
// Queue order reflects causal write order; the queue is the single source of
// truth for what still needs to reach the remote.
type PendingSyncItem struct {
	ID   string       `json:"id"`
	Type SyncItemType `json:"type"`
	// Data is the payload snapshot needed to replay the mutation: the full
	// entity for creates, a {id, status, updated_at} patch for updates.
	Data json.RawMessage `json:"data"`
	// Timestamp is the creation time in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`
}

// Goal is a row in the remote goals collection.
type Goal struct {
	ID                string
	UserID            string
	Title             string
	TargetTime        string
	Status            GoalStatus
	IsEssential       bool
	EssentialCategory string
	CreatedAt         string
	UpdatedAt         string
}

// Retrospect is a row in the remote retrospects collection. At most one is
// expected per (user, date); the remote schema enforces it.
type Retrospect struct {
	ID        string
	UserID    string
	Date      string
	Content   string
	CreatedAt string
	UpdatedAt string
}

// FlexibleGoal is a goal without a target time, tracked remotely only.
type FlexibleGoal struct {
	ID        string
	UserID    string
	Title     string
	Status    GoalStatus
	CreatedAt string
	UpdatedAt string
}

// DailyResolution is a short resolution shared with other users for a date.
type DailyResolution struct {
	ID        string
	UserID    string
	Content   string
	Date      string
	CreatedAt string
}
