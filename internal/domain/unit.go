package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnitStatus is the terminal state of an execution unit
type UnitStatus string

const (
	UnitStatusCompleted UnitStatus = "COMPLETED"
	UnitStatusRejected  UnitStatus = "REJECTED"
	UnitStatusFailed    UnitStatus = "FAILED"
)

// UnitInfo describes an execution unit that currently holds a worker slot
type UnitInfo struct {
	ID         uuid.UUID `json:"id"`
	Direction  Direction `json:"direction"`
	RemoteAddr string    `json:"remote_addr"`
	AcceptedAt time.Time `json:"accepted_at"`
	TextLength int       `json:"text_length,omitempty"`
}

// UnitOutcome is recorded once per execution unit when its slot is freed
type UnitOutcome struct {
	UnitID     uuid.UUID  `db:"unit_id" json:"unit_id"`
	Direction  Direction  `db:"direction" json:"direction"`
	RemoteAddr string     `db:"remote_addr" json:"remote_addr"`
	Status     UnitStatus `db:"status" json:"status"`
	Error      string     `db:"error" json:"error,omitempty"`
	TextLength int        `db:"text_length" json:"text_length"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt time.Time  `db:"finished_at" json:"finished_at"`
}

// Duration returns how long the unit held its slot
func (o UnitOutcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// OutcomeStats counts outcomes per status
type OutcomeStats struct {
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
}

// Add increments the counter matching status
func (s *OutcomeStats) Add(status UnitStatus, n int64) {
	switch status {
	case UnitStatusCompleted:
		s.Completed += n
	case UnitStatusRejected:
		s.Rejected += n
	case UnitStatusFailed:
		s.Failed += n
	}
}

// Total returns the number of recorded outcomes
func (s OutcomeStats) Total() int64 {
	return s.Completed + s.Rejected + s.Failed
}

type UnitOutcomeTable struct {
	UnitID     string
	Direction  string
	RemoteAddr string
	Status     string
	Error      string
	TextLength string
	StartedAt  string
	FinishedAt string
}

func (t UnitOutcomeTable) Name() string {
	return "unit_outcomes"
}

func (t UnitOutcomeTable) Columns() []string {
	return []string{
		t.UnitID, t.Direction, t.RemoteAddr, t.Status,
		t.Error, t.TextLength, t.StartedAt, t.FinishedAt,
	}
}

func GetUnitOutcomeTable() UnitOutcomeTable {
	return UnitOutcomeTable{
		UnitID:     "unit_id",
		Direction:  "direction",
		RemoteAddr: "remote_addr",
		Status:     "status",
		Error:      "error",
		TextLength: "text_length",
		StartedAt:  "started_at",
		FinishedAt: "finished_at",
	}
}
