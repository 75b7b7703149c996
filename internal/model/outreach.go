// internal/model/outreach.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type JobState string

const (
	JobStateIdle       JobState = "idle"
	JobStateValidating JobState = "validating"
	JobStateAuditing   JobState = "auditing"
	JobStateSending    JobState = "sending"
	JobStateCompleted  JobState = "completed"
	JobStateAborted    JobState = "aborted"
)

// Active reports whether a job in this state still owns the dispatcher.
func (s JobState) Active() bool {
	return s == JobStateValidating || s == JobStateAuditing || s == JobStateSending
}

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

type Target struct {
	Donor        Donor           `json:"donor"`
	AuditEntryID string          `json:"audit_entry_id,omitempty"`
	Status       RecipientStatus `json:"status"`
	Error        string          `json:"error,omitempty"`
	Link         string          `json:"link,omitempty"`
}

type Summary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

type OutreachJob struct {
	ID           uuid.UUID   `json:"id"`
	State        JobState    `json:"state"`
	AdminContact string      `json:"admin_contact"`
	Channel      ChannelType `json:"channel"`
	Targets      []Target    `json:"targets"`
	Progress     int         `json:"progress"`
	Summary      *Summary    `json:"summary,omitempty"`
	AbortReason  string      `json:"abort_reason,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   *time.Time  `json:"finished_at,omitempty"`
}

// Clone returns a copy that shares no slices with j.
func (j *OutreachJob) Clone() *OutreachJob {
	if j == nil {
		return nil
	}
	c := *j
	c.Targets = append([]Target(nil), j.Targets...)
	if j.Summary != nil {
		s := *j.Summary
		c.Summary = &s
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
