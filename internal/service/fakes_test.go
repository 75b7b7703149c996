package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/donorlink-backend/internal/channel"
	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

// fakeAudit stores entries in memory.
type fakeAudit struct {
	mu       sync.Mutex
	entries  []*model.AuditEntry
	statuses map[string]model.MessageStatus
	failWith error
	nextID   int
}

func (f *fakeAudit) AppendBatch(_ context.Context, entries []*model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, e := range entries {
		f.nextID++
		e.ID = fmt.Sprintf("audit-%d", f.nextID)
		f.entries = append(f.entries, e)
	}
	return nil
}

func (f *fakeAudit) UpdateStatus(_ context.Context, id string, status model.MessageStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[string]model.MessageStatus{}
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeAudit) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// fakeAdapter records every message and fails for phones listed in fail.
type fakeAdapter struct {
	mu     sync.Mutex
	calls  []channel.Message
	fail   map[string]error
	onSend func(msg channel.Message)
	panics map[string]bool
}

func (f *fakeAdapter) Type() model.ChannelType { return model.ChannelWhatsApp }

func (f *fakeAdapter) Send(_ context.Context, msg channel.Message) (channel.Receipt, error) {
	if f.onSend != nil {
		f.onSend(msg)
	}
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	err := f.fail[msg.Phone]
	shouldPanic := f.panics[msg.Phone]
	f.mu.Unlock()

	if shouldPanic {
		panic("boom")
	}
	if err != nil {
		return channel.Receipt{}, err
	}
	return channel.Receipt{Link: "https://wa.example/send?phone=" + msg.Phone}, nil
}

func (f *fakeAdapter) sent() []channel.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]channel.Message(nil), f.calls...)
}

// recorder collects events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// sleeper records requested delays without waiting.
type sleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func donor(id, name, phone string) model.Donor {
	return model.Donor{ID: id, Name: name, Phone: phone, BloodGroup: model.BloodGroupOPos, City: "Pune"}
}

func donors(n int) []model.Donor {
	out := make([]model.Donor, n)
	for i := range out {
		out[i] = donor(fmt.Sprintf("donor-%d", i+1), fmt.Sprintf("Donor %d", i+1), fmt.Sprintf("+1 (555) %07d", i+1))
	}
	return out
}

var rejected = appErrors.NewChannelRejected(400, "invalid parameter", `{"error":{"code":100}}`)

var errDisk = errors.New("disk full")

type dispatcherFixture struct {
	adapter  *fakeAdapter
	audit    *fakeAudit
	events   *recorder
	sleeper  *sleeper
	settings OutreachSettings
	d        *Dispatcher
}

func newFixture(opts DispatcherOptions) *dispatcherFixture {
	f := &dispatcherFixture{
		adapter:  &fakeAdapter{fail: map[string]error{}, panics: map[string]bool{}},
		audit:    &fakeAudit{},
		events:   &recorder{},
		sleeper:  &sleeper{},
		settings: OutreachSettings{AdminContact: "+19999999999"},
	}
	if opts.Delayer == nil {
		opts.Delayer = FixedDelay(2 * time.Second)
	}
	opts.Sleep = f.sleeper.Sleep
	f.d = NewDispatcher(f.adapter, f.audit, f.events, opts)
	return f
}
