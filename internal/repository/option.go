package repository

import (
	"context"

	"github.com/krakosik/pollbot/internal/model"
	"gorm.io/gorm"
)

type OptionRepository interface {
	Create(ctx context.Context, option model.Option) (model.Option, error)
	GetByID(ctx context.Context, id uint) (model.Option, error)
	Delete(ctx context.Context, pollID uint, ids []uint) (int64, error)
	Count(ctx context.Context, pollID uint) (int64, error)
}

type option struct {
	db *gorm.DB
}

func newOptionRepository(db *gorm.DB) OptionRepository {
	return &option{
		db: db,
	}
}

func (o *option) Create(ctx context.Context, option model.Option) (model.Option, error) {
	option.ID = 0
	option.Votes = nil
	result := o.db.WithContext(ctx).Create(&option)
	if result.Error != nil {
		return model.Option{}, wrapError(result.Error)
	}

	return option, nil
}

func (o *option) GetByID(ctx context.Context, id uint) (model.Option, error) {
	var option model.Option
	result := o.db.WithContext(ctx).First(&option, id)
	if result.Error != nil {
		return model.Option{}, wrapError(result.Error)
	}

	return option, nil
}

// Delete removes the given options of a poll and their votes. Ids owned by
// other polls are ignored.
func (o *option) Delete(ctx context.Context, pollID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ? AND option_id IN ?", pollID, ids).Delete(&model.Vote{}).Error; err != nil {
			return wrapError(err)
		}
		result := tx.Where("poll_id = ? AND id IN ?", pollID, ids).Delete(&model.Option{})
		if result.Error != nil {
			return wrapError(result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (o *option) Count(ctx context.Context, pollID uint) (int64, error) {
	var count int64
	result := o.db.WithContext(ctx).Model(&model.Option{}).Where("poll_id = ?", pollID).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}
