package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/types"
)

type IkigaiRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.IkigaiRecord) ([]*types.IkigaiRecord, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.IkigaiRecord, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.IkigaiRecord, error)
	// UpdateFields patches the named columns on one record. Callers pass
	// only what changed so concurrent writers do not clobber each other's
	// columns.
	UpdateFields(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields map[string]any) error
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
}

type ikigaiRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIkigaiRecordRepo(db *gorm.DB, baseLog *logger.Logger) IkigaiRecordRepo {
	return &ikigaiRecordRepo{db: db, log: baseLog.With("repo", "IkigaiRecordRepo")}
}

func (rr *ikigaiRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.IkigaiRecord) ([]*types.IkigaiRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(records) == 0 {
		return []*types.IkigaiRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (rr *ikigaiRecordRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.IkigaiRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.IkigaiRecord
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *ikigaiRecordRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.IkigaiRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if slug == "" {
		return nil, nil
	}

	var result types.IkigaiRecord
	err := transaction.WithContext(ctx).
		Where("sharable_slug = ?", slug).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *ikigaiRecordRepo) UpdateFields(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.IkigaiRecord{}).
		Where("id = ?", recordID).
		Updates(fields).Error
}

func (rr *ikigaiRecordRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.IkigaiRecord{}).
		Where("sharable_slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
