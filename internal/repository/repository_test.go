package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
	"queridodiario/internal/security"
)

type fixture struct {
	db          *database.DB
	tenants     *TenantRepository
	diaries     *DiaryRepository
	routines    *RoutineRepository
	activities  *ActivityRepository
	completions *CompletionRepository
	notes       *DayNoteRepository
	extras      *ExtraActivityRepository
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "qd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))

	return &fixture{
		db:          db,
		tenants:     NewTenantRepository(db),
		diaries:     NewDiaryRepository(db),
		routines:    NewRoutineRepository(db),
		activities:  NewActivityRepository(db),
		completions: NewCompletionRepository(db),
		notes:       NewDayNoteRepository(db),
		extras:      NewExtraActivityRepository(db),
		clock:       time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps
func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) tenant(t *testing.T, email string) *models.Tenant {
	t.Helper()
	tn := &models.Tenant{ID: security.NewID(), Email: email, PasswordHash: "hash", Name: "Tenant", Plan: models.PlanFree, CreatedAt: f.tick()}
	require.NoError(t, f.tenants.Create(context.Background(), tn))
	return tn
}

func (f *fixture) diary(t *testing.T, tenantID, name string) *models.Diary {
	t.Helper()
	d := &models.Diary{ID: security.NewID(), TenantID: tenantID, Name: name, Avatar: "📒", AccessToken: security.NewAccessToken(), CreatedAt: f.tick()}
	require.NoError(t, f.diaries.Create(context.Background(), d))
	return d
}

func (f *fixture) routine(t *testing.T, diaryID, name string, order int) *models.Routine {
	t.Helper()
	r := &models.Routine{ID: security.NewID(), DiaryID: diaryID, Name: name, Icon: "☀️", SortOrder: order, CreatedAt: f.tick()}
	require.NoError(t, f.routines.Create(context.Background(), r))
	return r
}

func (f *fixture) activity(t *testing.T, routineID, title string, typ models.ActivityType, points int, days ...models.Weekday) *models.Activity {
	t.Helper()
	ctx := context.Background()
	a := &models.Activity{ID: security.NewID(), RoutineID: routineID, Title: title, Icon: "📌", Points: points, Type: typ, CreatedAt: f.tick()}
	require.NoError(t, f.activities.Create(ctx, a))
	for _, d := range days {
		next, err := f.activities.NextDaySortOrder(ctx, routineID, d)
		require.NoError(t, err)
		require.NoError(t, f.activities.InsertDay(ctx, models.ActivityDay{ActivityID: a.ID, DayOfWeek: d, SortOrder: next}))
	}
	return a
}

func TestTenantRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tn := f.tenant(t, "  Ana@Example.com ")
	assert.Equal(t, "ana@example.com", tn.Email)

	got, err := f.tenants.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tn.ID, got.ID)
	assert.Equal(t, models.PlanFree, got.Plan)

	missing, err := f.tenants.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := f.tenants.UpdatePlan(ctx, tn.ID, models.PlanPro)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.tenants.UpdatePassword(ctx, tn.ID, "new-hash")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = f.tenants.GetByID(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, got.Plan)
	assert.Equal(t, "new-hash", got.PasswordHash)

	ok, err = f.tenants.UpdatePlan(ctx, "missing", models.PlanPro)
	require.NoError(t, err)
	assert.False(t, ok)

	// Duplicate email is rejected by the unique index
	err = f.tenants.Create(ctx, &models.Tenant{ID: security.NewID(), Email: "ana@example.com", PasswordHash: "x", Name: "Dup", Plan: models.PlanFree, CreatedAt: f.tick()})
	assert.Error(t, err)

	all, err := f.tenants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDiaryRepositoryOwnershipAndCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.tenant(t, "owner@example.com")
	other := f.tenant(t, "other@example.com")
	d := f.diary(t, owner.ID, "Ana")
	r := f.routine(t, d.ID, "Manhã", 0)
	a := f.activity(t, r.ID, "Beber água", models.ActivityBinary, 10, models.Monday)

	got, err := f.diaries.GetForTenant(ctx, d.ID, other.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "diary must not be visible to another tenant")

	byToken, err := f.diaries.GetByAccessToken(ctx, d.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, d.ID, byToken.ID)

	ok, err := f.diaries.UpdateAccessToken(ctx, d.ID, owner.ID, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	old, err := f.diaries.GetByAccessToken(ctx, d.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, old, "old token must stop working")

	ok, err = f.diaries.Delete(ctx, d.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.completions.UpsertBinary(ctx, &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-04", Value: 10, CreatedAt: f.tick()})
	require.NoError(t, err)

	ok, err = f.diaries.Delete(ctx, d.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	routines, err := f.routines.ListByDiary(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, routines)

	completions, err := f.completions.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, completions)

	days, err := f.activities.ListAllDays(ctx)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestRoutineRepositoryOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")

	next, err := f.routines.NextSortOrder(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	night := f.routine(t, d.ID, "Noite", 2)
	f.routine(t, d.ID, "Manhã", 0)
	f.routine(t, d.ID, "Tarde", 1)

	next, err = f.routines.NextSortOrder(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	list, err := f.routines.ListByDiary(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Manhã", "Tarde", "Noite"}, []string{list[0].Name, list[1].Name, list[2].Name})

	require.NoError(t, f.routines.SetSortOrder(ctx, night.ID, -1))
	list, err = f.routines.ListByDiary(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Noite", list[0].Name)

	ok, err := f.routines.Update(ctx, night.ID, d.ID, "Noitinha", "🌙")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := f.routines.GetForDiary(ctx, night.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Noitinha", got.Name)

	got, err = f.routines.GetForDiary(ctx, night.ID, "other")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActivityRepositoryDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")
	r := f.routine(t, d.ID, "Manhã", 0)
	a1 := f.activity(t, r.ID, "Escovar dentes", models.ActivityBinary, 5, models.Monday, models.Tuesday)
	a2 := f.activity(t, r.ID, "Comportamento", models.ActivityIncremental, 20, models.Monday)

	list, err := f.activities.ListByRoutine(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a1.ID, list[0].ID)
	assert.Equal(t, []models.Weekday{models.Monday, models.Tuesday}, list[0].Weekdays())

	day, ok := list[1].DayFor(models.Monday)
	require.True(t, ok)
	assert.Equal(t, 1, day.SortOrder, "second activity lands after the first in the Monday column")

	next, err := f.activities.NextDaySortOrder(ctx, r.ID, models.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	next, err = f.activities.NextDaySortOrder(ctx, r.ID, models.Sunday)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	updated, err := f.activities.SetDaySortOrder(ctx, a2.ID, models.Monday, 0)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = f.activities.SetDaySortOrder(ctx, a2.ID, models.Friday, 0)
	require.NoError(t, err)
	assert.False(t, updated)

	require.NoError(t, f.activities.DeleteDay(ctx, a1.ID, models.Tuesday))
	days, err := f.activities.ListDays(ctx, a1.ID)
	require.NoError(t, err)
	assert.Len(t, days, 1)

	byDiary, err := f.activities.ListByDiary(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, byDiary, 2)

	got, err := f.activities.GetForDiary(ctx, a2.ID, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ActivityIncremental, got.Type)

	otherDiary := f.diary(t, f.tenant(t, "b@example.com").ID, "Bia")
	foreign, err := f.activities.GetForDiary(ctx, a2.ID, otherDiary.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)

	// Same weekday twice violates the composite key
	assert.Error(t, f.activities.InsertDay(ctx, models.ActivityDay{ActivityID: a2.ID, DayOfWeek: models.Monday}))

	got.Title = "Bom comportamento"
	got.Points = 25
	ok, err = f.activities.Update(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = f.activities.GetForRoutine(ctx, a2.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bom comportamento", got.Title)
	assert.Equal(t, 25, got.Points)
}

func TestCompletionUpsertBinaryReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")
	a := f.activity(t, f.routine(t, d.ID, "Manhã", 0).ID, "Beber água", models.ActivityBinary, 10, models.Friday)

	first, err := f.completions.UpsertBinary(ctx, &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-01", Value: 10, CreatedAt: f.tick()})
	require.NoError(t, err)
	assert.Equal(t, 10, first.Value)

	second, err := f.completions.UpsertBinary(ctx, &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-01", Value: 0, CreatedAt: f.tick()})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Value)

	rows, err := f.completions.ListForKey(ctx, a.ID, d.ID, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Value)
	require.NotNil(t, rows[0].BinarySlot)
	assert.Equal(t, 0, *rows[0].BinarySlot)

	// Another date is an independent key
	_, err = f.completions.UpsertBinary(ctx, &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-08", Value: -10, CreatedAt: f.tick()})
	require.NoError(t, err)

	latest, err := f.completions.LatestDate(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", latest)
}

func TestCompletionUpsertBinaryClearsIncrementalRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")
	a := f.activity(t, f.routine(t, d.ID, "Manhã", 0).ID, "Ler", models.ActivityBinary, 5, models.Friday)

	// Rows written while the activity was incremental
	for i := 0; i < 2; i++ {
		require.NoError(t, f.completions.Append(ctx, &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-01", Value: 5, CreatedAt: f.tick()}))
	}

	_, err := f.completions.UpsertBinary(ctx, &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-01", Value: 5, CreatedAt: f.tick()})
	require.NoError(t, err)

	rows, err := f.completions.ListForKey(ctx, a.ID, d.ID, "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCompletionConcurrentBinaryMarksConverge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")
	a := f.activity(t, f.routine(t, d.ID, "Manhã", 0).ID, "Beber água", models.ActivityBinary, 10, models.Friday)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := 10
			if i%2 == 1 {
				value = -10
			}
			errs <- f.db.InTx(ctx, func(tx *database.Tx) error {
				_, err := f.completions.WithTx(tx).UpsertBinary(ctx, &models.Completion{
					ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-01",
					Value: value, CreatedAt: time.Now().UTC(),
				})
				return err
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := f.completions.ListForKey(ctx, a.ID, d.ID, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, rows, 1, "concurrent marks of the same key converge to exactly one row")
	assert.Contains(t, []int{10, -10}, rows[0].Value)
}

func TestCompletionAppendIncremental(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")
	a := f.activity(t, f.routine(t, d.ID, "Tarde", 0).ID, "Comportamento", models.ActivityIncremental, 20, models.Friday)

	comment := "ajudou a irmã"
	values := []int{20, 20, -20}
	for i, v := range values {
		c := &models.Completion{ID: security.NewID(), ActivityID: a.ID, DiaryID: d.ID, Date: "2024-03-01", Value: v, CreatedAt: f.tick()}
		if i == 0 {
			c.Comment = &comment
		}
		require.NoError(t, f.completions.Append(ctx, c))
	}

	rows, err := f.completions.ListForDate(ctx, d.ID, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	sum := 0
	for i, r := range rows {
		assert.Equal(t, values[i], r.Value, "creation order is preserved")
		assert.Nil(t, r.BinarySlot)
		sum += r.Value
	}
	assert.Equal(t, 20, sum)
	require.NotNil(t, rows[0].Comment)
	assert.Equal(t, comment, *rows[0].Comment)
	assert.Nil(t, rows[1].Comment)

	empty, err := f.completions.LatestDate(ctx, "no-such-diary")
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestDayNoteRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")

	for i, content := range []string{"Dia calmo", "Dia agitado"} {
		now := f.tick()
		require.NoError(t, f.notes.Upsert(ctx, &models.DayNote{ID: fmt.Sprintf("n%d", i), DiaryID: d.ID, Date: "2024-03-01", Content: content, CreatedAt: now, UpdatedAt: now}))
	}

	note, err := f.notes.Get(ctx, d.ID, "2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "Dia agitado", note.Content)
	assert.Equal(t, "n0", note.ID, "upsert keeps the original row")

	all, err := f.notes.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.notes.Delete(ctx, d.ID, "2024-03-01"))
	require.NoError(t, f.notes.Delete(ctx, d.ID, "2024-03-01"))

	note, err = f.notes.Get(ctx, d.ID, "2024-03-01")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestExtraActivityRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.diary(t, f.tenant(t, "a@example.com").ID, "Ana")
	r := f.routine(t, d.ID, "Tarde", 1)

	e := &models.ExtraActivity{ID: security.NewID(), DiaryID: d.ID, RoutineID: r.ID, Date: "2024-03-01", Title: "Visitar a avó", Points: 5, Icon: "👵", CreatedAt: f.tick()}
	require.NoError(t, f.extras.Create(ctx, e))

	list, err := f.extras.ListForDate(ctx, d.ID, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CompletionValue)

	ok, err := f.extras.SetCompletionValue(ctx, e.ID, d.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.extras.SetCompletionValue(ctx, e.ID, "other", 5)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := f.extras.GetForDiary(ctx, e.ID, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletionValue)
	assert.Equal(t, 5, *got.CompletionValue)

	other, err := f.extras.ListForDate(ctx, d.ID, "2024-03-02")
	require.NoError(t, err)
	assert.Empty(t, other)
}
