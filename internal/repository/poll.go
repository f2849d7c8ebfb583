package repository

import (
	"context"
	"fmt"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"gorm.io/gorm"
)

type PollRepository interface {
	Create(ctx context.Context, poll model.Poll) (model.Poll, error)
	GetByMessage(ctx context.Context, channel, ts string) (model.Poll, error)
	GetByID(ctx context.Context, id uint, withOptions bool) (model.Poll, error)
	UpdateCoordinates(ctx context.Context, id uint, channel, ts string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, author string) ([]model.Poll, error)
}

type poll struct {
	db *gorm.DB
}

func newPollRepository(db *gorm.DB) PollRepository {
	return &poll{
		db: db,
	}
}

// Create stores the poll together with its initial options.
func (p *poll) Create(ctx context.Context, poll model.Poll) (model.Poll, error) {
	poll.ID = 0
	poll.Votes = nil
	result := p.db.WithContext(ctx).Create(&poll)
	if result.Error != nil {
		return model.Poll{}, wrapError(result.Error)
	}

	return poll, nil
}

func (p *poll) GetByMessage(ctx context.Context, channel, ts string) (model.Poll, error) {
	if channel == "" || ts == "" {
		return model.Poll{}, fmt.Errorf("%w: poll without message coordinates", dto.ErrNotFound)
	}

	var poll model.Poll
	result := p.db.WithContext(ctx).Where("channel = ? AND ts = ?", channel, ts).First(&poll)
	if result.Error != nil {
		return model.Poll{}, wrapError(result.Error)
	}

	return poll, nil
}

// GetByID optionally preloads options in creation order, each with its votes in casting order.
func (p *poll) GetByID(ctx context.Context, id uint, withOptions bool) (model.Poll, error) {
	query := p.db.WithContext(ctx)
	if withOptions {
		query = query.
			Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.id") }).
			Preload("Options.Votes", func(db *gorm.DB) *gorm.DB { return db.Order("votes.id") })
	}

	var poll model.Poll
	result := query.First(&poll, id)
	if result.Error != nil {
		return model.Poll{}, wrapError(result.Error)
	}

	return poll, nil
}

func (p *poll) UpdateCoordinates(ctx context.Context, id uint, channel, ts string) error {
	result := p.db.WithContext(ctx).Model(&model.Poll{}).Where("id = ?", id).
		Updates(map[string]interface{}{"channel": channel, "ts": ts})
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: poll %d", dto.ErrNotFound, id)
	}

	return nil
}

// Delete removes the poll with its options and votes in one transaction.
func (p *poll) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(&model.Vote{}).Error; err != nil {
			return wrapError(err)
		}
		if err := tx.Where("poll_id = ?", id).Delete(&model.Option{}).Error; err != nil {
			return wrapError(err)
		}
		result := tx.Delete(&model.Poll{}, id)
		if result.Error != nil {
			return wrapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: poll %d", dto.ErrNotFound, id)
		}
		return nil
	})
}

func (p *poll) List(ctx context.Context, author string) ([]model.Poll, error) {
	query := p.db.WithContext(ctx).Order("id DESC")
	if author != "" {
		query = query.Where("author = ?", author)
	}

	var polls []model.Poll
	result := query.Find(&polls)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return polls, nil
}
