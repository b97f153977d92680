package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/mailer"
	"github.com/spec-kit/tours-service/internal/repository"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	order []string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]domain.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.byID[user.ID] = *user
	m.order = append(m.order, user.ID)
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, u := range m.byID {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryUsers) ListActive(_ context.Context, limit, offset int) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, id := range m.order {
		if u, ok := m.byID[id]; ok && u.Active {
			out = append(out, u)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryUsers) SetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordResetTokenHash = &tokenHash
	u.PasswordResetExpiresAt = &expiresAt
	m.byID[userID] = u
	return nil
}

func (m *memoryUsers) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[userID]; ok {
		u.ClearPasswordReset()
		m.byID[userID] = u
	}
	return nil
}

func (m *memoryUsers) GetUserByToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.HasPendingReset(now) && *u.PasswordResetTokenHash == tokenHash {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryUsers) setRole(id string, role domain.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	u.Role = role
	m.byID[id] = u
}

type memoryTours struct {
	mu    sync.Mutex
	tours map[string]domain.Tour
}

func newMemoryTours() *memoryTours {
	return &memoryTours{tours: map[string]domain.Tour{}}
}

func (m *memoryTours) Create(_ context.Context, tour *domain.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tours {
		if t.Name == tour.Name {
			return repository.ErrTourNameTaken
		}
	}
	tour.ID = uuid.NewString()
	tour.CreatedAt = time.Now().UTC()
	m.tours[tour.ID] = *tour
	return nil
}

func (m *memoryTours) Update(_ context.Context, tour *domain.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tours[tour.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.tours[tour.ID] = *tour
	return nil
}

func (m *memoryTours) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tours[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tours, id)
	return nil
}

func (m *memoryTours) GetByID(_ context.Context, id string) (*domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tours[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (m *memoryTours) List(_ context.Context, filter repository.TourFilter) ([]domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Tour
	for _, t := range m.tours {
		if t.SecretTour && !filter.IncludeSecret {
			continue
		}
		if filter.PriceLTE != nil && t.Price > *filter.PriceLTE {
			continue
		}
		if filter.PriceGTE != nil && t.Price < *filter.PriceGTE {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *captureMailer) Send(_ context.Context, email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *captureMailer) lastBody() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Body
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var errConnRefused = errors.New("connection refused")
