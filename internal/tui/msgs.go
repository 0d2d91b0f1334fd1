package tui

import (
	"time"

	"github.com/thushan/runstatus/internal/controller"
)

// eventMsg carries a controller event into the program loop
type eventMsg controller.Event

// commitDoneMsg reports the outcome of a filter, limit or refresh request
type commitDoneMsg struct {
	err error
}

type tickMsg time.Time
