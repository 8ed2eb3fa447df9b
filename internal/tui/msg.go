package tui

import (
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase"
)

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTasksLoaded is sent when tasks are loaded from the store.
type MsgTasksLoaded struct {
	Tasks []*domain.Task
	Date  domain.Date
}

func (MsgTasksLoaded) sealed() {}

// MsgTaskCompleted is sent when a task is completed.
type MsgTaskCompleted struct {
	Record domain.CompletionRecord
}

func (MsgTaskCompleted) sealed() {}

// MsgRolloverDone is sent when a batch rollover finishes.
type MsgRolloverDone struct {
	Output *usecase.ProcessRolloverOutput
}

func (MsgRolloverDone) sealed() {}

// MsgTaskReactivated is sent when a task is re-enabled.
type MsgTaskReactivated struct {
	TaskID         int
	AlreadyEnabled bool
}

func (MsgTaskReactivated) sealed() {}

// MsgStatsLoaded is sent when statistics for the selected task are loaded.
type MsgStatsLoaded struct {
	Statistics domain.Statistics
}

func (MsgStatsLoaded) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}
