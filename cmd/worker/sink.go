package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/service"
)

type jobTally struct {
	sent   int
	failed int
}

// eventSink replays outreach events from the broker into a reporter and
// cross-checks each job's final summary against the per-recipient events seen.
type eventSink struct {
	out service.Reporter

	mu   sync.Mutex
	jobs map[uuid.UUID]*jobTally
}

func newEventSink(out service.Reporter) *eventSink {
	return &eventSink{out: out, jobs: map[uuid.UUID]*jobTally{}}
}

// Handle processes one delivery. Undecodable bodies are dropped, not retried.
func (s *eventSink) Handle(payload any) error {
	body, ok := payload.([]byte)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}

	var e service.Event
	if err := json.Unmarshal(body, &e); err != nil {
		zlog.Logger.Warn().Err(err).Msg("invalid outreach event, dropping")
		return nil
	}

	s.out.Report(e)
	s.tally(e)
	return nil
}

func (s *eventSink) tally(e service.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.jobs[e.JobID]
	if !ok {
		t = &jobTally{}
		s.jobs[e.JobID] = t
	}

	switch e.Type {
	case service.EventRecipientSent:
		t.sent++
	case service.EventRecipientFailed:
		t.failed++
	case service.EventCompleted, service.EventAborted:
		if e.Summary != nil && (e.Summary.Sent != t.sent || e.Summary.Failed != t.failed) {
			zlog.Logger.Warn().
				Str("job_id", e.JobID.String()).
				Int("summary_sent", e.Summary.Sent).
				Int("seen_sent", t.sent).
				Int("summary_failed", e.Summary.Failed).
				Int("seen_failed", t.failed).
				Msg("outreach summary does not match recipient events")
		}
		delete(s.jobs, e.JobID)
	}
}

func (s *eventSink) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
