package service

import (
	"context"
	"sync"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

// MockDonorRepo keeps donors in insertion order.
type MockDonorRepo struct {
	mu     sync.Mutex
	donors []model.Donor
	lists  int
}

func (m *MockDonorRepo) List(_ context.Context, filter model.DonorFilter) ([]model.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := []model.Donor{}
	for _, d := range m.donors {
		if filter.BloodGroup != "" && string(d.BloodGroup) != filter.BloodGroup {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *MockDonorRepo) GetByID(_ context.Context, id string) (*model.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.donors {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, appErrors.NewDonorNotFound(id)
}

func (m *MockDonorRepo) Create(_ context.Context, d *model.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = "new"
	}
	m.donors = append(m.donors, *d)
	return nil
}

func (m *MockDonorRepo) Update(_ context.Context, d *model.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.donors {
		if m.donors[i].ID == d.ID {
			m.donors[i] = *d
			return nil
		}
	}
	return appErrors.NewDonorNotFound(d.ID)
}

func (m *MockDonorRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.donors {
		if m.donors[i].ID == id {
			m.donors = append(m.donors[:i], m.donors[i+1:]...)
			return nil
		}
	}
	return appErrors.NewDonorNotFound(id)
}

type MockMessageRepo struct {
	fakeAudit
}

func (m *MockMessageRepo) ListByDonor(_ context.Context, donorID string) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AuditEntry{}
	for _, e := range m.entries {
		if e.DonorID == donorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type MockProfileRepo struct {
	profiles map[string]*model.Profile
	saved    map[string]string
}

func (m *MockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	return m.profiles[id], nil
}

func (m *MockProfileRepo) FindAdminWithWhatsApp(_ context.Context) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.IsAdmin && p.WhatsAppNumber != nil && *p.WhatsAppNumber != "" {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockProfileRepo) SaveWhatsAppNumber(_ context.Context, id, number string) error {
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[id] = number
	return nil
}

type MockSecretRepo struct {
	secrets map[string]string
	err     error
}

func (m *MockSecretRepo) Get(_ context.Context, names ...string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]string{}
	for _, n := range names {
		if v, ok := m.secrets[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }
