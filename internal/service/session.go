package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/selection"
)

// DefaultOperatorID is used when a request names no operator.
const DefaultOperatorID = "default"

// DispatcherFactory builds the dispatcher for a new session. The reporter
// it receives must be wired into the dispatcher so the session sees completions.
type DispatcherFactory func(reporter Reporter) *Dispatcher

// Session is one operator's view: the donor list they are looking at, the
// donors they picked from it and their dispatcher.
type Session struct {
	OperatorID string
	Selection  *selection.Tracker
	Dispatcher *Dispatcher

	directory *DirectoryService
	settings  SettingsResolver
	baseCtx   context.Context
	jobs      *sync.WaitGroup

	mu      sync.Mutex
	visible []model.Donor
}

// ListDonors replaces the visible list and clears the selection. Every
// fetch starts a fresh selection, even when the rows come back unchanged.
func (s *Session) ListDonors(ctx context.Context, filter model.DonorFilter) ([]model.Donor, error) {
	donors, err := s.directory.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.visible = donors
	s.mu.Unlock()

	s.Selection.Clear()
	return donors, nil
}

// donorChanged swaps in the edited row, or drops a deleted one, and clears
// the selection if this session was showing that donor.
func (s *Session) donorChanged(id string, updated *model.Donor) bool {
	s.mu.Lock()
	idx := -1
	for i, d := range s.visible {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		if updated == nil {
			s.visible = append(s.visible[:idx:idx], s.visible[idx+1:]...)
		} else {
			row := *updated
			if row.CreatedAt.IsZero() {
				row.CreatedAt = s.visible[idx].CreatedAt
			}
			s.visible[idx] = row
		}
	}
	s.mu.Unlock()

	if idx < 0 {
		return false
	}
	s.Selection.Clear()
	return true
}

// Visible returns the donor list the operator last loaded.
func (s *Session) Visible() []model.Donor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Donor{}, s.visible...)
}

// Toggle flips one visible donor in the selection.
func (s *Session) Toggle(donorID string) (bool, error) {
	if _, ok := s.find(donorID); !ok {
		return false, appErrors.NewBadRequest("donor " + donorID + " is not in the current list")
	}
	return s.Selection.Toggle(donorID), nil
}

// SelectAll selects every visible donor and returns their ids.
func (s *Session) SelectAll() []string {
	s.mu.Lock()
	ids := make([]string, len(s.visible))
	for i, d := range s.visible {
		ids[i] = d.ID
	}
	s.mu.Unlock()

	s.Selection.SelectAll(ids)
	return ids
}

func (s *Session) ClearSelection() {
	s.Selection.Clear()
}

// StartOutreach snapshots the selected donors in selection order and hands
// them to the dispatcher. The send loop outlives the request that started it.
func (s *Session) StartOutreach(ctx context.Context) (uuid.UUID, error) {
	ids := s.Selection.IDs()
	targets := make([]model.Donor, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.find(id); ok {
			targets = append(targets, d)
		}
	}

	var settings OutreachSettings
	if len(targets) > 0 {
		var err error
		settings, err = s.settings.Resolve(ctx, s.OperatorID)
		if err != nil && !isConfigurationMissing(err) {
			return uuid.Nil, err
		}
	}

	id, done, err := s.Dispatcher.Start(s.baseCtx, targets, settings)
	if err != nil {
		return uuid.Nil, err
	}
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		<-done
	}()
	return id, nil
}

// Job returns the dispatcher state and the current or last job.
func (s *Session) Job() (model.JobState, *model.OutreachJob) {
	return s.Dispatcher.Snapshot()
}

func (s *Session) find(id string) (model.Donor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.visible {
		if d.ID == id {
			return d, true
		}
	}
	return model.Donor{}, false
}

func (s *Session) onEvent(e Event) {
	if e.Type == EventCompleted {
		s.Selection.Clear()
		zlog.Logger.Info().Str("operator", s.OperatorID).Msg("selection cleared after outreach")
	}
}

// SessionManager hands out one Session per operator.
type SessionManager struct {
	directory     *DirectoryService
	settings      SettingsResolver
	newDispatcher DispatcherFactory
	baseCtx       context.Context
	jobs          sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates sessions whose jobs run under baseCtx. It
// watches directory so edits and deletions reach every open session.
func NewSessionManager(baseCtx context.Context, directory *DirectoryService, settings SettingsResolver, factory DispatcherFactory) *SessionManager {
	m := &SessionManager{
		directory:     directory,
		settings:      settings,
		newDispatcher: factory,
		baseCtx:       baseCtx,
		sessions:      map[string]*Session{},
	}
	directory.Watch(m)
	return m
}

// DonorChanged implements DonorWatcher.
func (m *SessionManager) DonorChanged(id string, updated *model.Donor) {
	for _, s := range m.all() {
		if s.donorChanged(id, updated) {
			zlog.Logger.Info().Str("operator", s.OperatorID).Str("donor_id", id).Msg("selection cleared after donor change")
		}
	}
}

// Wait blocks until every started job has completed or ctx is done. Cancel
// the base context first so running jobs wind down.
func (m *SessionManager) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		m.jobs.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SessionManager) all() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *SessionManager) Get(operatorID string) *Session {
	if operatorID == "" {
		operatorID = DefaultOperatorID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[operatorID]; ok {
		return s
	}
	s := &Session{
		OperatorID: operatorID,
		Selection:  selection.NewTracker(),
		directory:  m.directory,
		settings:   m.settings,
		baseCtx:    m.baseCtx,
		jobs:       &m.jobs,
	}
	s.Dispatcher = m.newDispatcher(ReporterFunc(s.onEvent))
	m.sessions[operatorID] = s
	return s
}
