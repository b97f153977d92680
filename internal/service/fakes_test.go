package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/events"
	"github.com/spec-kit/tours-service/internal/mailer"
	"github.com/spec-kit/tours-service/internal/repository"
)

// fakeUserStore backs both UserRepository and PasswordResetRepository.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]domain.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) ListActive(_ context.Context, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if u.Active {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserStore) SetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordResetTokenHash = &tokenHash
	u.PasswordResetExpiresAt = &expiresAt
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	u.ClearPasswordReset()
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) GetUserByToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == tokenHash &&
			u.PasswordResetExpiresAt != nil && u.PasswordResetExpiresAt.After(now) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeUserStore) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) last() mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Email{}
	}
	return m.sent[len(m.sent)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeTourRepo struct {
	mu    sync.Mutex
	tours map[string]domain.Tour
	gets  int
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{tours: map[string]domain.Tour{}}
}

func (f *fakeTourRepo) Create(_ context.Context, tour *domain.Tour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tours {
		if t.Name == tour.Name {
			return repository.ErrTourNameTaken
		}
	}
	tour.ID = uuid.NewString()
	tour.CreatedAt = time.Now()
	f.tours[tour.ID] = *tour
	return nil
}

func (f *fakeTourRepo) Update(_ context.Context, tour *domain.Tour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tours[tour.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.tours[tour.ID] = *tour
	return nil
}

func (f *fakeTourRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tours[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tours, id)
	return nil
}

func (f *fakeTourRepo) GetByID(_ context.Context, id string) (*domain.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	t, ok := f.tours[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTourRepo) List(_ context.Context, filter repository.TourFilter) ([]domain.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Tour
	for _, t := range f.tours {
		if t.SecretTour && !filter.IncludeSecret {
			continue
		}
		if filter.Difficulty != nil && t.Difficulty != *filter.Difficulty {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mapTourCache struct {
	mu      sync.Mutex
	entries map[string]domain.Tour
}

func newMapTourCache() *mapTourCache {
	return &mapTourCache{entries: map[string]domain.Tour{}}
}

func (c *mapTourCache) Get(_ context.Context, id string) (*domain.Tour, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (c *mapTourCache) Set(_ context.Context, tour *domain.Tour) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tour.ID] = *tour
}

func (c *mapTourCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

var errSMTPDown = errors.New("dial tcp 127.0.0.1:2525: connect: connection refused")
