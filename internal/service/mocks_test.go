package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"citypulse/internal/domain"
	"citypulse/internal/repository"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockVideoRepo struct {
	byID        map[string]domain.Video
	recent      []domain.Video
	matches     []domain.VideoMatch
	searchErr   error
	recentErr   error
	created     []domain.Video
	expiredN    int64
	lastRecent  repository.RecentQuery
	lastVector  repository.VectorQuery
	searchCalls int
	recentCalls int
	// honorLimit corta recent a q.Limit como hace el LIMIT de SQL
	honorLimit bool
}

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{byID: make(map[string]domain.Video)}
}

func (m *mockVideoRepo) Create(_ context.Context, video domain.Video) error {
	m.created = append(m.created, video)
	m.byID[video.ID] = video
	return nil
}

func (m *mockVideoRepo) GetByID(_ context.Context, id string) (domain.Video, error) {
	v, ok := m.byID[id]
	if !ok {
		return domain.Video{}, pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockVideoRepo) ListRecent(_ context.Context, q repository.RecentQuery) ([]domain.Video, error) {
	m.recentCalls++
	m.lastRecent = q
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if m.honorLimit && q.Limit < len(m.recent) {
		return m.recent[:q.Limit], nil
	}
	return m.recent, nil
}

func (m *mockVideoRepo) VectorSearch(_ context.Context, q repository.VectorQuery) ([]domain.VideoMatch, error) {
	m.searchCalls++
	m.lastVector = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.matches, nil
}

func (m *mockVideoRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return m.expiredN, nil
}

// mockTasteRepo implementa el CAS sobre Version; conflicts fuerza N conflictos
// simulando likes concurrentes que ganan la carrera.
type mockTasteRepo struct {
	mu        sync.Mutex
	profiles  map[string]domain.TasteProfile
	conflicts int
	getErr    error
	// updateErr se devuelve despues de aplicar el cambio, como un commit sin respuesta
	updateErr error
	updates   int
}

func newMockTasteRepo() *mockTasteRepo {
	return &mockTasteRepo{profiles: make(map[string]domain.TasteProfile)}
}

func (m *mockTasteRepo) GetOrCreate(_ context.Context, userID string) (domain.TasteProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.TasteProfile{}, m.getErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = domain.TasteProfile{UserID: userID}
		m.profiles[userID] = p
	}
	p.Embedding = append([]float32(nil), p.Embedding...)
	return p, nil
}

func (m *mockTasteRepo) UpdateTaste(_ context.Context, profile domain.TasteProfile, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrTasteVersionConflict
	}
	current := m.profiles[profile.UserID]
	if current.Version != expectedVersion {
		return repository.ErrTasteVersionConflict
	}
	profile.Version = expectedVersion + 1
	m.profiles[profile.UserID] = profile
	m.updates++
	return m.updateErr
}

type mockLikeRepo struct {
	mu      sync.Mutex
	likes   map[string]domain.Like
	deletes int
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[string]domain.Like)}
}

func (m *mockLikeRepo) Create(_ context.Context, like domain.Like) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := like.UserID + "|" + like.VideoID
	if _, ok := m.likes[key]; ok {
		return false, nil
	}
	m.likes[key] = like
	return true, nil
}

func (m *mockLikeRepo) Exists(_ context.Context, userID, videoID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.likes[userID+"|"+videoID]
	return ok, nil
}

func (m *mockLikeRepo) Delete(_ context.Context, userID, videoID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "|" + videoID
	if _, ok := m.likes[key]; !ok {
		return false, nil
	}
	delete(m.likes, key)
	m.deletes++
	return true, nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) bool { return false }

func testVideo(id string, borough domain.Borough, age time.Duration, embedding []float32, tags ...string) domain.Video {
	v := domain.Video{
		ID:        id,
		UserID:    "creator",
		Borough:   borough,
		Title:     "video " + id,
		Tags:      tags,
		CreatedAt: testNow.Add(-age),
		ExpiresAt: testNow.Add(-age).Add(24 * time.Hour),
	}
	if len(embedding) > 0 {
		v.Embedding = pgvector.NewVector(embedding)
	}
	return v
}
