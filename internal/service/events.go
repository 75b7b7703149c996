package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/queue"
)

type EventType string

const (
	EventRecipientSent   EventType = "recipient_sent"
	EventRecipientFailed EventType = "recipient_failed"
	EventProgress        EventType = "progress"
	EventCompleted       EventType = "completed"
	EventAborted         EventType = "aborted"
)

// Event is one entry in a job's result stream.
type Event struct {
	Type      EventType      `json:"type"`
	JobID     uuid.UUID      `json:"job_id"`
	DonorID   string         `json:"donor_id,omitempty"`
	DonorName string         `json:"donor_name,omitempty"`
	Position  int            `json:"position,omitempty"`
	Total     int            `json:"total,omitempty"`
	Progress  int            `json:"progress"`
	Reason    string         `json:"reason,omitempty"`
	Code      appErrors.Code `json:"code,omitempty"`
	Link      string         `json:"link,omitempty"`
	Summary   *model.Summary `json:"summary,omitempty"`
	At        time.Time      `json:"at"`
}

// Reporter receives dispatcher events in order. Report must not block for long:
// it runs on the send loop.
type Reporter interface {
	Report(e Event)
}

type ReporterFunc func(e Event)

func (f ReporterFunc) Report(e Event) { f(e) }

type MultiReporter []Reporter

func (m MultiReporter) Report(e Event) {
	for _, r := range m {
		if r != nil {
			r.Report(e)
		}
	}
}

// LogReporter writes every event to the structured log.
type LogReporter struct{}

func (LogReporter) Report(e Event) {
	switch e.Type {
	case EventRecipientSent:
		zlog.Logger.Info().
			Str("job_id", e.JobID.String()).
			Str("donor_id", e.DonorID).
			Msgf("message sent to %s (%d/%d)", e.DonorName, e.Position, e.Total)
	case EventRecipientFailed:
		zlog.Logger.Warn().
			Str("job_id", e.JobID.String()).
			Str("donor_id", e.DonorID).
			Str("code", string(e.Code)).
			Msgf("failed to send to %s (%d/%d): %s", e.DonorName, e.Position, e.Total, e.Reason)
	case EventProgress:
		zlog.Logger.Debug().Str("job_id", e.JobID.String()).Int("progress", e.Progress).Msg("outreach progress")
	case EventCompleted:
		ev := zlog.Logger.Info().Str("job_id", e.JobID.String())
		if e.Summary != nil {
			ev = ev.Int("sent", e.Summary.Sent).Int("failed", e.Summary.Failed).Int("total", e.Summary.Total)
		}
		ev.Msg("outreach completed")
	case EventAborted:
		zlog.Logger.Error().Str("job_id", e.JobID.String()).Str("code", string(e.Code)).Msg("outreach aborted: " + e.Reason)
	}
}

// QueueReporter publishes events to the outreach events topic.
type QueueReporter struct {
	Queue queue.Queue
	Topic string
}

func (r QueueReporter) Report(e Event) {
	topic := r.Topic
	if topic == "" {
		topic = queue.OutreachEventsTopic
	}
	if err := r.Queue.Publish(topic, e); err != nil && !errors.Is(err, queue.ErrNoSubscribers) {
		zlog.Logger.Error().Err(err).Str("topic", topic).Str("type", string(e.Type)).Msg("failed to publish outreach event")
	}
}
