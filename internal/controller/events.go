package controller

import "github.com/thushan/runstatus/internal/core/domain"

type EventKind string

const (
	EventFilterChanged EventKind = "filter_changed"
	EventLimitChanged  EventKind = "limit_changed"
	EventRefreshed     EventKind = "refreshed"
	EventRefreshFailed EventKind = "refresh_failed"
)

// Event is published after every state change; Snapshot is the state as
// of that change
type Event struct {
	Kind     EventKind
	Snapshot domain.Snapshot
}
