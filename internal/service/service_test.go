package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
	"queridodiario/internal/repository"
	"queridodiario/internal/security"
)

// testClock hands out strictly increasing timestamps
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	db      *database.DB
	auth    *AuthService
	diaries *DiaryService
	panel   *PanelService
	backup  *BackupService
	clock   *testClock
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "qd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	logger := zap.NewNop()

	e := &testEnv{
		db:      db,
		auth:    NewAuthService(repository.NewTenantRepository(db), security.NewSessionManager("test-secret", time.Hour), logger),
		diaries: NewDiaryService(db, logger),
		panel:   NewPanelService(db, time.UTC, logger),
		backup:  NewBackupService(db, logger),
		clock:   &testClock{now: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
	}
	e.auth.now = e.clock.Now
	e.diaries.now = e.clock.Now
	e.panel.now = e.clock.Now
	e.backup.now = e.clock.Now
	return e
}

func (e *testEnv) tenant(t *testing.T, email string) *models.Tenant {
	t.Helper()
	tn, err := e.auth.CreateTenant(context.Background(), email, "password123", "Tenant", "")
	require.NoError(t, err)
	return tn
}

func (e *testEnv) diary(t *testing.T, tenantID, name string) *models.Diary {
	t.Helper()
	d, err := e.diaries.CreateDiary(context.Background(), tenantID, name, "")
	require.NoError(t, err)
	return d
}

func (e *testEnv) routines(t *testing.T, tenantID, diaryID string) []models.Routine {
	t.Helper()
	routines, err := e.diaries.ListRoutines(context.Background(), tenantID, diaryID)
	require.NoError(t, err)
	return routines
}

func (e *testEnv) activity(t *testing.T, tenantID, diaryID, routineID, title string, typ models.ActivityType, points int, days ...models.Weekday) *models.ActivityWithDays {
	t.Helper()
	a, err := e.diaries.CreateActivity(context.Background(), tenantID, diaryID, routineID, ActivityInput{
		Title:  title,
		Points: points,
		Type:   typ,
		Days:   days,
	})
	require.NoError(t, err)
	return a
}

func everyDay() []models.Weekday {
	return append([]models.Weekday(nil), models.AllWeekdays...)
}

func intPtr(v int) *int { return &v }
