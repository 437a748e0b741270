package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
	"queridodiario/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version         string                 `json:"version"`
	ExportedAt      time.Time              `json:"exported_at"`
	DatabaseType    string                 `json:"database_type"`
	Tenants         []models.Tenant        `json:"tenants"`
	Diaries         []models.Diary         `json:"diaries"`
	Routines        []models.Routine       `json:"routines"`
	Activities      []models.Activity      `json:"activities"`
	ActivityDays    []models.ActivityDay   `json:"activity_days"`
	Completions     []models.Completion    `json:"completions"`
	DayNotes        []models.DayNote       `json:"day_notes"`
	ExtraActivities []models.ExtraActivity `json:"extra_activities"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger, now: time.Now}
}

// Export writes every table as one JSON document. The format does not depend on
// the database engine, so a SQLite export can be imported into PostgreSQL or MySQL.
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	var err error
	if backup.Tenants, err = repository.NewTenantRepository(s.db).List(ctx); err != nil {
		return nil, fmt.Errorf("failed to export tenants: %w", err)
	}
	if backup.Diaries, err = repository.NewDiaryRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export diaries: %w", err)
	}
	if backup.Routines, err = repository.NewRoutineRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export routines: %w", err)
	}
	activities := repository.NewActivityRepository(s.db)
	if backup.Activities, err = activities.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export activities: %w", err)
	}
	if backup.ActivityDays, err = activities.ListAllDays(ctx); err != nil {
		return nil, fmt.Errorf("failed to export activity days: %w", err)
	}
	if backup.Completions, err = repository.NewCompletionRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export completions: %w", err)
	}
	if backup.DayNotes, err = repository.NewDayNoteRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export notes: %w", err)
	}
	if backup.ExtraActivities, err = repository.NewExtraActivityRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export extra activities: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("Database exported",
		zap.Int("tenants", len(backup.Tenants)),
		zap.Int("diaries", len(backup.Diaries)),
		zap.Int("routines", len(backup.Routines)),
		zap.Int("activities", len(backup.Activities)),
		zap.Int("completions", len(backup.Completions)))
	return backup, nil
}

// Import restores a backup in a single transaction. Rows are inserted with their
// original IDs, so importing into a database that already holds them fails and
// nothing is written.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("Importing backup",
		zap.String("source_database", backup.DatabaseType),
		zap.Time("exported_at", backup.ExportedAt))

	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		tenants := repository.NewTenantRepository(tx)
		for i := range backup.Tenants {
			if err := tenants.Create(ctx, &backup.Tenants[i]); err != nil {
				return err
			}
		}

		diaries := repository.NewDiaryRepository(tx)
		for i := range backup.Diaries {
			if err := diaries.Create(ctx, &backup.Diaries[i]); err != nil {
				return err
			}
		}

		routines := repository.NewRoutineRepository(tx)
		for i := range backup.Routines {
			if err := routines.Create(ctx, &backup.Routines[i]); err != nil {
				return err
			}
		}

		activities := repository.NewActivityRepository(tx)
		for i := range backup.Activities {
			if err := activities.Create(ctx, &backup.Activities[i]); err != nil {
				return err
			}
		}
		for _, d := range backup.ActivityDays {
			if err := activities.InsertDay(ctx, d); err != nil {
				return err
			}
		}

		completions := repository.NewCompletionRepository(tx)
		for i := range backup.Completions {
			if err := completions.Insert(ctx, &backup.Completions[i]); err != nil {
				return err
			}
		}

		notes := repository.NewDayNoteRepository(tx)
		for i := range backup.DayNotes {
			if err := notes.Upsert(ctx, &backup.DayNotes[i]); err != nil {
				return err
			}
		}

		extras := repository.NewExtraActivityRepository(tx)
		for i := range backup.ExtraActivities {
			if err := extras.Create(ctx, &backup.ExtraActivities[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import backup: %w", err)
	}

	s.logger.Info("Database import completed",
		zap.Int("tenants", len(backup.Tenants)),
		zap.Int("diaries", len(backup.Diaries)),
		zap.Int("completions", len(backup.Completions)))
	return &backup, nil
}
