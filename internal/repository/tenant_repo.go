package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var tenantColumns = []string{"id", "email", "password_hash", "name", "plan", "created_at"}

// TenantRepository handles database operations for tenants
type TenantRepository struct {
	db database.DBTX
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db database.DBTX) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a tenant. Emails are stored lowercased.
func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	t.Email = normalizeEmail(t.Email)
	q := r.db.Builder().Insert("tenants").Columns(tenantColumns...).
		Values(t.ID, t.Email, t.PasswordHash, t.Name, t.Plan, t.CreatedAt)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by ID, or nil when it does not exist
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a tenant by email address, or nil when it does not exist
func (r *TenantRepository) GetByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	return r.getWhere(ctx, squirrel.Eq{"email": normalizeEmail(email)})
}

func (r *TenantRepository) getWhere(ctx context.Context, where squirrel.Sqlizer) (*models.Tenant, error) {
	var t models.Tenant
	found, err := getOne(ctx, r.db, &t, r.db.Builder().Select(tenantColumns...).From("tenants").Where(where))
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &t, nil
}

// List returns every tenant ordered by email
func (r *TenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	q := r.db.Builder().Select(tenantColumns...).From("tenants").OrderBy("email")
	if err := selectAll(ctx, r.db, &tenants, q); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// UpdatePassword replaces a tenant's password hash
func (r *TenantRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (bool, error) {
	ok, err := execOne(ctx, r.db, r.db.Builder().Update("tenants").Set("password_hash", passwordHash).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return false, fmt.Errorf("failed to update password: %w", err)
	}
	return ok, nil
}

// UpdatePlan changes a tenant's plan tier
func (r *TenantRepository) UpdatePlan(ctx context.Context, id, plan string) (bool, error) {
	ok, err := execOne(ctx, r.db, r.db.Builder().Update("tenants").Set("plan", plan).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return false, fmt.Errorf("failed to update plan: %w", err)
	}
	return ok, nil
}

// Delete removes a tenant and, by cascade, all of its diaries
func (r *TenantRepository) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := execOne(ctx, r.db, r.db.Builder().Delete("tenants").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return false, fmt.Errorf("failed to delete tenant: %w", err)
	}
	return ok, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
