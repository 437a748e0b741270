package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var diaryColumns = []string{"id", "tenant_id", "name", "avatar", "access_token", "created_at"}

// DiaryRepository handles database operations for diaries
type DiaryRepository struct {
	db database.DBTX
}

// NewDiaryRepository creates a new diary repository
func NewDiaryRepository(db database.DBTX) *DiaryRepository {
	return &DiaryRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *DiaryRepository) WithTx(tx *database.Tx) *DiaryRepository {
	return &DiaryRepository{db: tx}
}

// Create inserts a diary
func (r *DiaryRepository) Create(ctx context.Context, d *models.Diary) error {
	q := r.db.Builder().Insert("diaries").Columns(diaryColumns...).
		Values(d.ID, d.TenantID, d.Name, d.Avatar, d.AccessToken, d.CreatedAt)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to create diary: %w", err)
	}
	return nil
}

// GetForTenant retrieves a diary owned by tenantID, or nil
func (r *DiaryRepository) GetForTenant(ctx context.Context, id, tenantID string) (*models.Diary, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id, "tenant_id": tenantID})
}

// GetByAccessToken retrieves the diary a capability token belongs to, or nil
func (r *DiaryRepository) GetByAccessToken(ctx context.Context, token string) (*models.Diary, error) {
	return r.getWhere(ctx, squirrel.Eq{"access_token": token})
}

func (r *DiaryRepository) getWhere(ctx context.Context, where squirrel.Sqlizer) (*models.Diary, error) {
	var d models.Diary
	found, err := getOne(ctx, r.db, &d, r.db.Builder().Select(diaryColumns...).From("diaries").Where(where))
	if err != nil {
		return nil, fmt.Errorf("failed to get diary: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

// ListByTenant returns a tenant's diaries, oldest first
func (r *DiaryRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Diary, error) {
	var diaries []models.Diary
	q := r.db.Builder().Select(diaryColumns...).From("diaries").
		Where(squirrel.Eq{"tenant_id": tenantID}).OrderBy("created_at", "id")
	if err := selectAll(ctx, r.db, &diaries, q); err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	return diaries, nil
}

// ListAll returns every diary
func (r *DiaryRepository) ListAll(ctx context.Context) ([]models.Diary, error) {
	var diaries []models.Diary
	if err := selectAll(ctx, r.db, &diaries, r.db.Builder().Select(diaryColumns...).From("diaries").OrderBy("created_at", "id")); err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	return diaries, nil
}

// Update changes a diary's name and avatar
func (r *DiaryRepository) Update(ctx context.Context, id, tenantID, name, avatar string) (bool, error) {
	q := r.db.Builder().Update("diaries").Set("name", name).Set("avatar", avatar).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})
	ok, err := execOne(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("failed to update diary: %w", err)
	}
	return ok, nil
}

// UpdateAccessToken replaces a diary's capability token
func (r *DiaryRepository) UpdateAccessToken(ctx context.Context, id, tenantID, token string) (bool, error) {
	q := r.db.Builder().Update("diaries").Set("access_token", token).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})
	ok, err := execOne(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("failed to update access token: %w", err)
	}
	return ok, nil
}

// Delete removes a diary and everything below it
func (r *DiaryRepository) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	ok, err := execOne(ctx, r.db, r.db.Builder().Delete("diaries").Where(squirrel.Eq{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return false, fmt.Errorf("failed to delete diary: %w", err)
	}
	return ok, nil
}
