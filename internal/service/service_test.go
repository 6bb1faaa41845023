package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"employee-management-system/internal/database"
	"employee-management-system/internal/logging"
	"employee-management-system/internal/mailer"
	"employee-management-system/internal/model"
	"employee-management-system/internal/store"
	"employee-management-system/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var resetLink = regexp.MustCompile(`/reset-password/([0-9a-f]+)`)

func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := resetLink.FindStringSubmatch(m.sent[len(m.sent)-1].HTML)
	require.Len(t, match, 2)
	return match[1]
}

type fakeMirror struct {
	mu       sync.Mutex
	upserted []string
	removed  []string
}

func (m *fakeMirror) UpsertEmployees(ctx context.Context, employees []model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range employees {
		m.upserted = append(m.upserted, e.ID)
	}
	return nil
}

func (m *fakeMirror) RemoveEmployees(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, ids...)
	return nil
}

// countingCache mirrors the generation rules of the Redis facet cache.
type countingCache struct {
	departments []string
	entryGen    int64
	filled      bool
	gen         int64
	reads       int
	invalidated int
}

func (c *countingCache) Departments(ctx context.Context) ([]string, int64, bool, error) {
	c.reads++
	if !c.hit() {
		return nil, c.gen, false, nil
	}
	return c.departments, c.gen, true, nil
}

func (c *countingCache) SetDepartments(ctx context.Context, gen int64, depts []string) error {
	c.departments, c.entryGen, c.filled = depts, gen, true
	return nil
}

func (c *countingCache) Invalidate(ctx context.Context) error {
	c.gen++
	c.invalidated++
	return nil
}

func (c *countingCache) hit() bool {
	return c.filled && c.entryGen == c.gen
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}


var errSMTPDown = errors.New("smtp: connection refused")

func newUserService(t *testing.T) (*UserService, *fakeMailer, *clock, *store.UserStore) {
	t.Helper()
	db := newTestDB(t)
	users := store.NewUserStore(db)
	clk := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := util.NewTokenService("test-secret").WithClock(clk.Now)
	mail := &fakeMailer{}
	return NewUserService(users, tokens, mail, "http://localhost:5173/", logging.Discard()), mail, clk, users
}
