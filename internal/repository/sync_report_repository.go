package repository

import (
	"context"

	"mcfbridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncReportRepository stores the latest reconciliation snapshot. A single
// slot is overwritten each run.
type SyncReportRepository interface {
	Save(ctx context.Context, report *models.SyncReport) error
	Latest(ctx context.Context) (*models.SyncReport, error)
}

type gormSyncReportRepository struct {
	db *gorm.DB
}

func NewGormSyncReportRepository(db *gorm.DB) SyncReportRepository {
	return &gormSyncReportRepository{db: db}
}

func (r *gormSyncReportRepository) Save(ctx context.Context, report *models.SyncReport) error {
	report.ID = models.SyncReportID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(report).Error
}

func (r *gormSyncReportRepository) Latest(ctx context.Context) (*models.SyncReport, error) {
	var report models.SyncReport
	if err := r.db.WithContext(ctx).First(&report, "id = ?", models.SyncReportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
