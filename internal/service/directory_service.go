package service

import (
	"context"
	"strings"
	"sync"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/repository"
)

// DirectoryService is the donor directory: listing, registration, edits and
// the per-donor message history.
type DirectoryService struct {
	Donors   repository.DonorRepositoryInterface
	Messages repository.MessageRepositoryInterface

	mu       sync.Mutex
	watchers []DonorWatcher
}

// DonorWatcher is told about every successful edit or removal. updated is
// nil when the donor was deleted.
type DonorWatcher interface {
	DonorChanged(id string, updated *model.Donor)
}

// Watch registers w for donor changes.
func (s *DirectoryService) Watch(w DonorWatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, w)
}

func (s *DirectoryService) notify(id string, updated *model.Donor) {
	s.mu.Lock()
	watchers := append([]DonorWatcher(nil), s.watchers...)
	s.mu.Unlock()

	for _, w := range watchers {
		w.DonorChanged(id, updated)
	}
}

func (s *DirectoryService) List(ctx context.Context, filter model.DonorFilter) ([]model.Donor, error) {
	filter = filter.Normalized()
	filter.City = strings.TrimSpace(filter.City)
	if filter.BloodGroup != "" && !model.BloodGroup(filter.BloodGroup).IsValid() {
		return nil, appErrors.NewBadRequest("unknown blood group " + filter.BloodGroup)
	}
	return s.Donors.List(ctx, filter)
}

func (s *DirectoryService) Get(ctx context.Context, id string) (*model.Donor, error) {
	return s.Donors.GetByID(ctx, id)
}

func (s *DirectoryService) Register(ctx context.Context, d *model.Donor) error {
	if err := checkDonor(d); err != nil {
		return err
	}
	return s.Donors.Create(ctx, d)
}

// Update overwrites the editable fields of an existing donor.
func (s *DirectoryService) Update(ctx context.Context, d *model.Donor) error {
	if err := checkDonor(d); err != nil {
		return err
	}
	if err := s.Donors.Update(ctx, d); err != nil {
		return err
	}
	updated := *d
	s.notify(d.ID, &updated)
	return nil
}

func (s *DirectoryService) Delete(ctx context.Context, id string) error {
	if err := s.Donors.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(id, nil)
	return nil
}

// History returns the audit log for a donor, newest first.
func (s *DirectoryService) History(ctx context.Context, donorID string) ([]model.AuditEntry, error) {
	if _, err := s.Donors.GetByID(ctx, donorID); err != nil {
		return nil, err
	}
	return s.Messages.ListByDonor(ctx, donorID)
}

func checkDonor(d *model.Donor) error {
	if !d.BloodGroup.IsValid() {
		return appErrors.NewBadRequest("unknown blood group " + string(d.BloodGroup))
	}
	if d.DonationCount < 0 {
		return appErrors.NewBadRequest("donation count cannot be negative")
	}
	return nil
}
