// internal/service/dispatcher.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/channel"
	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

// DefaultMaxSelection caps how many donors one bulk send may target.
const DefaultMaxSelection = 15

// AuditLog is the part of the message log the dispatcher writes to.
type AuditLog interface {
	AppendBatch(ctx context.Context, entries []*model.AuditEntry) error
	UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error
}

// OutreachSettings is resolved once per job, before the dispatcher is triggered.
type OutreachSettings struct {
	AdminContact string
	Credentials  channel.Credentials
}

type DispatcherOptions struct {
	MaxSelection    int
	MessageTemplate string
	Normalizer      channel.PhoneNormalizer
	Delayer         Delayer
	Sleep           SleepFunc
	// Retry governs the best-effort audit status update after each send.
	Retry retry.Strategy
}

// Dispatcher runs one outreach job at a time: validate, write the audit
// batch, then send to each target in order with a pause between sends.
type Dispatcher struct {
	adapter    channel.Adapter
	audit      AuditLog
	reporter   Reporter
	normalizer channel.PhoneNormalizer
	delayer    Delayer
	sleep      SleepFunc
	maxSel     int
	template   string
	retry      retry.Strategy
	now        func() time.Time

	mu    sync.Mutex
	state model.JobState
	job   *model.OutreachJob
}

func NewDispatcher(adapter channel.Adapter, audit AuditLog, reporter Reporter, opts DispatcherOptions) *Dispatcher {
	if opts.MaxSelection < 1 {
		opts.MaxSelection = DefaultMaxSelection
	}
	if opts.Delayer == nil {
		opts.Delayer = FixedDelay(2 * time.Second)
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Retry.Attempts < 1 {
		opts.Retry.Attempts = 1
	}
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Dispatcher{
		adapter:    adapter,
		audit:      audit,
		reporter:   reporter,
		normalizer: opts.Normalizer,
		delayer:    opts.Delayer,
		sleep:      opts.Sleep,
		maxSel:     opts.MaxSelection,
		template:   opts.MessageTemplate,
		retry:      opts.Retry,
		now:        time.Now,
		state:      model.JobStateIdle,
	}
}

// Run executes a whole job on the caller's goroutine.
func (d *Dispatcher) Run(ctx context.Context, donors []model.Donor, settings OutreachSettings) (*model.Summary, error) {
	job, texts, err := d.prepare(ctx, donors, settings)
	if err != nil {
		return nil, err
	}
	return d.send(ctx, job, texts, settings), nil
}

// Start validates and writes the audit batch before returning, so aborts
// reach the caller. The send loop then continues on its own goroutine; done
// receives the summary once the job completes.
func (d *Dispatcher) Start(ctx context.Context, donors []model.Donor, settings OutreachSettings) (uuid.UUID, <-chan model.Summary, error) {
	job, texts, err := d.prepare(ctx, donors, settings)
	if err != nil {
		return uuid.Nil, nil, err
	}

	done := make(chan model.Summary, 1)
	go func() {
		defer close(done)
		done <- *d.send(ctx, job, texts, settings)
	}()
	return job.ID, done, nil
}

// Snapshot returns the dispatcher state and a copy of the current or last job.
func (d *Dispatcher) Snapshot() (model.JobState, *model.OutreachJob) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.job.Clone()
}

func (d *Dispatcher) State() model.JobState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// prepare covers validating and auditing. It returns the job in the sending
// state together with the rendered text for each target.
func (d *Dispatcher) prepare(ctx context.Context, donors []model.Donor, settings OutreachSettings) (*model.OutreachJob, []string, error) {
	d.mu.Lock()
	if d.state.Active() {
		state := d.state
		d.mu.Unlock()
		return nil, nil, appErrors.NewJobInProgress(string(state))
	}
	job := &model.OutreachJob{
		ID:           uuid.New(),
		State:        model.JobStateValidating,
		AdminContact: settings.AdminContact,
		Channel:      d.adapter.Type(),
		Targets:      []model.Target{},
		StartedAt:    d.now(),
	}
	d.state = model.JobStateValidating
	d.job = job
	d.mu.Unlock()

	switch {
	case len(donors) == 0:
		return nil, nil, d.abort(job, appErrors.NewPreconditionFailed("no donors selected"))
	case len(donors) > d.maxSel:
		return nil, nil, d.abort(job, appErrors.NewPreconditionFailed(
			fmt.Sprintf("%d donors selected, at most %d can be messaged at once", len(donors), d.maxSel)))
	case strings.TrimSpace(settings.AdminContact) == "":
		return nil, nil, d.abort(job, appErrors.NewConfigurationMissing("admin WhatsApp contact"))
	}

	targets := make([]model.Target, len(donors))
	texts := make([]string, len(donors))
	entries := make([]*model.AuditEntry, len(donors))
	for i, donor := range donors {
		texts[i] = RenderOutreachMessage(d.template, donor, settings.AdminContact)
		targets[i] = model.Target{Donor: donor, Status: model.RecipientPending}
		entries[i] = &model.AuditEntry{
			DonorID:     donor.ID,
			MessageText: texts[i],
			MessageType: job.Channel,
			Status:      model.MessageStatusPending,
		}
	}

	d.mu.Lock()
	d.state = model.JobStateAuditing
	job.State = model.JobStateAuditing
	job.Targets = targets
	d.mu.Unlock()

	if err := d.audit.AppendBatch(ctx, entries); err != nil {
		return nil, nil, d.abort(job, appErrors.NewAuditWriteFailed(err))
	}

	d.mu.Lock()
	for i, e := range entries {
		job.Targets[i].AuditEntryID = e.ID
	}
	d.state = model.JobStateSending
	job.State = model.JobStateSending
	d.mu.Unlock()

	zlog.Logger.Info().
		Str("job_id", job.ID.String()).
		Int("targets", len(targets)).
		Str("channel", string(job.Channel)).
		Msg("outreach audit written, sending")
	return job, texts, nil
}

func (d *Dispatcher) abort(job *model.OutreachJob, err error) error {
	finished := d.now()

	d.mu.Lock()
	d.state = model.JobStateAborted
	job.State = model.JobStateAborted
	job.AbortReason = err.Error()
	job.FinishedAt = &finished
	d.mu.Unlock()

	d.reporter.Report(Event{
		Type:   EventAborted,
		JobID:  job.ID,
		Reason: err.Error(),
		Code:   appErrors.CodeOf(err),
		At:     finished,
	})
	return err
}

var errJobCancelled = errors.New("job cancelled before this recipient was reached")

// send walks the targets in order. It never returns early: every target is
// attempted or, once ctx is done, marked failed.
func (d *Dispatcher) send(ctx context.Context, job *model.OutreachJob, texts []string, settings OutreachSettings) *model.Summary {
	n := len(texts)
	summary := &model.Summary{Total: n}

	for i := 0; i < n; i++ {
		pos := i + 1

		d.mu.Lock()
		target := job.Targets[i]
		d.mu.Unlock()

		var (
			receipt channel.Receipt
			err     error
		)
		if ctx.Err() != nil {
			err = appErrors.NewUnexpectedChannelError(errJobCancelled)
		} else {
			receipt, err = d.attempt(ctx, target.Donor, texts[i], settings)
		}

		progress := Progress(pos, n)
		status := model.MessageStatusSent

		d.mu.Lock()
		t := &job.Targets[i]
		if err == nil {
			t.Status = model.RecipientSent
			t.Link = receipt.Link
			summary.Sent++
		} else {
			t.Status = model.RecipientFailed
			t.Error = err.Error()
			summary.Failed++
			status = model.MessageStatusFailed
		}
		job.Progress = progress
		d.mu.Unlock()

		ev := Event{
			JobID:     job.ID,
			DonorID:   target.Donor.ID,
			DonorName: target.Donor.Name,
			Position:  pos,
			Total:     n,
			Progress:  progress,
			Link:      receipt.Link,
			At:        d.now(),
		}
		if err == nil {
			ev.Type = EventRecipientSent
		} else {
			ev.Type = EventRecipientFailed
			ev.Reason = err.Error()
			ev.Code = appErrors.CodeOf(err)
		}
		d.reporter.Report(ev)
		d.reporter.Report(Event{Type: EventProgress, JobID: job.ID, Position: pos, Total: n, Progress: progress, At: ev.At})

		d.markAudit(ctx, target.AuditEntryID, status)

		if pos < n && ctx.Err() == nil {
			if err := d.sleep(ctx, d.delayer.Next()); err != nil {
				zlog.Logger.Warn().Err(err).Str("job_id", job.ID.String()).Msg("outreach delay interrupted")
			}
		}
	}

	finished := d.now()
	d.mu.Lock()
	job.Summary = summary
	job.Progress = 0
	job.State = model.JobStateCompleted
	job.FinishedAt = &finished
	d.state = model.JobStateCompleted
	d.mu.Unlock()

	s := *summary
	d.reporter.Report(Event{Type: EventCompleted, JobID: job.ID, Total: n, Progress: 0, Summary: &s, At: finished})
	return &s
}

// attempt makes exactly one adapter call for a donor, converting panics and
// untyped errors into UnexpectedChannelError.
func (d *Dispatcher) attempt(ctx context.Context, donor model.Donor, text string, settings OutreachSettings) (receipt channel.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = appErrors.NewUnexpectedChannelError(fmt.Errorf("adapter panic: %v", r))
		}
	}()

	phone, err := d.normalizer.Normalize(donor.Phone)
	if err != nil {
		return channel.Receipt{}, err
	}

	receipt, err = d.adapter.Send(ctx, channel.Message{
		Phone:         phone,
		RecipientName: donor.Name,
		AdminContact:  settings.AdminContact,
		Text:          text,
		Credentials:   settings.Credentials,
	})
	if err != nil && appErrors.CodeOf(err) == "" {
		err = appErrors.NewUnexpectedChannelError(err)
	}
	return receipt, err
}

func (d *Dispatcher) markAudit(ctx context.Context, id string, status model.MessageStatus) {
	if id == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	err := retry.Do(func() error {
		return d.audit.UpdateStatus(ctx, id, status)
	}, d.retry)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("audit_entry_id", id).Str("status", string(status)).Msg("failed to update audit status")
	}
}

// Progress is round(100*i/n).
func Progress(i, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(i) / float64(n)))
}
