package jobboard_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-jobboard"
)

const testSigningKey = "test-signing-key-0123456789"

// MockConfig implements jobboard.Config for testing
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string { return m.Called().String(0) }
func (m *MockConfig) GetIssuer() string     { return m.Called().String(0) }
func (m *MockConfig) GetTokenExpiration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}
func (m *MockConfig) GetContextKey() string     { return m.Called().String(0) }
func (m *MockConfig) GetCookieName() string     { return m.Called().String(0) }
func (m *MockConfig) GetCookieDomain() string   { return m.Called().String(0) }
func (m *MockConfig) GetCookieSameSite() string { return m.Called().String(0) }
func (m *MockConfig) GetEnvironment() string    { return m.Called().String(0) }
func (m *MockConfig) GetEnrichConcurrency() int { return m.Called().Int(0) }

// MockLogger implements jobboard.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) { m.Called(msg, args) }
func (m *MockLogger) Info(msg string, args ...any)  { m.Called(msg, args) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.Called(msg, args) }
func (m *MockLogger) Error(msg string, args ...any) { m.Called(msg, args) }

// nopLogger keeps test output quiet
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func testSettings(env string) *jobboard.Settings {
	s := jobboard.DefaultSettings()
	s.SigningKey = testSigningKey
	s.Environment = env
	return s
}

// fixedClock returns a clock frozen at t, advanced by calling the setter
func fixedClock(t time.Time) (func() time.Time, func(time.Time)) {
	var mu sync.Mutex
	now := t
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(next time.Time) {
			mu.Lock()
			defer mu.Unlock()
			now = next
		}
}

func setupDB(t *testing.T) (*bun.DB, jobboard.RepositoryManager) {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	repos := jobboard.NewRepositoryManager(db)
	require.NoError(t, repos.Validate())
	require.NoError(t, repos.Migrate(context.Background()))

	return db, repos
}

// stubJobs is an in memory JobFinder
type stubJobs struct {
	mu     sync.Mutex
	jobs   map[string]*jobboard.Job
	errs   map[string]error
	calls  []string
	active int
	peak   int
	delay  time.Duration
}

func (s *stubJobs) GetByID(ctx context.Context, id string) (*jobboard.Job, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	if job, ok := s.jobs[id]; ok {
		return job, nil
	}
	return nil, jobboard.ErrNotFound.Clone()
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []jobboard.StatusChangedEvent
	err    error
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, e jobboard.StatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// countingMetrics records increments by name
type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counts: map[string]int{}}
}

func (m *countingMetrics) Increment(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
}

func (m *countingMetrics) Time(string, time.Duration) {}

func (m *countingMetrics) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}
