package models

import (
	"testing"
	"time"
)

func TestScheduledTaskNextDue(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	daily := "FREQ=DAILY"
	task := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               due,
		RecurringInterval: &daily,
	}
	if next := task.NextDue(now); !next.After(due) {
		t.Errorf("active rule should advance past due, got %v", next)
	}

	// An exhausted rule falls back to the stale due date. The worker keys
	// off a non-future NextDue to retire the task instead of rescheduling,
	// otherwise it would re-run it on every tick.
	exhausted := "FREQ=DAILY;COUNT=1"
	task.RecurringInterval = &exhausted
	if next := task.NextDue(now); next.After(due) {
		t.Errorf("exhausted rule should not yield a future occurrence, got %v", next)
	}

	// One-time tasks never advance.
	task.TaskType = ScheduledTaskTypeOneTime
	if next := task.NextDue(now); !next.Equal(due) {
		t.Errorf("one-time NextDue = %v, want %v", next, due)
	}
}
