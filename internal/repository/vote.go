package repository

import (
	"context"
	"fmt"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository interface {
	Find(ctx context.Context, user string, optionID uint) (model.Vote, error)
	Create(ctx context.Context, vote model.Vote) (model.Vote, error)
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, pollID uint, user string) ([]model.Vote, error)
	ListVoters(ctx context.Context, channel, ts string) ([]string, error)
	Toggle(ctx context.Context, vote model.Vote) (bool, error)
}

type vote struct {
	db *gorm.DB
}

func newVoteRepository(db *gorm.DB) VoteRepository {
	return &vote{
		db: db,
	}
}

func (v *vote) Find(ctx context.Context, user string, optionID uint) (model.Vote, error) {
	var vote model.Vote
	result := v.db.WithContext(ctx).Where("user_id = ? AND option_id = ?", user, optionID).First(&vote)
	if result.Error != nil {
		return model.Vote{}, wrapError(result.Error)
	}

	return vote, nil
}

func (v *vote) Create(ctx context.Context, vote model.Vote) (model.Vote, error) {
	vote.ID = 0
	vote.Option = nil
	result := v.db.WithContext(ctx).Create(&vote)
	if result.Error != nil {
		return model.Vote{}, wrapError(result.Error)
	}

	return vote, nil
}

func (v *vote) Delete(ctx context.Context, id uint) error {
	result := v.db.WithContext(ctx).Delete(&model.Vote{}, id)
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: vote %d", dto.ErrNotFound, id)
	}

	return nil
}

func (v *vote) ListForUser(ctx context.Context, pollID uint, user string) ([]model.Vote, error) {
	var votes []model.Vote
	result := v.db.WithContext(ctx).Preload("Option").
		Where("poll_id = ? AND user_id = ?", pollID, user).
		Order("id").
		Find(&votes)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return votes, nil
}

// ListVoters returns the distinct users who voted on the poll posted at the given message.
func (v *vote) ListVoters(ctx context.Context, channel, ts string) ([]string, error) {
	var users []string
	result := v.db.WithContext(ctx).Model(&model.Vote{}).
		Joins("JOIN polls ON polls.id = votes.poll_id").
		Where("polls.channel = ? AND polls.ts = ?", channel, ts).
		Distinct("votes.user_id").
		Pluck("votes.user_id", &users)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return users, nil
}

// Toggle retracts the user's vote for the option if it exists and casts it otherwise.
// It reports whether a vote was cast. An insert that loses a race against a concurrent
// one is treated as a retraction, so the pair never holds more than one vote.
func (v *vote) Toggle(ctx context.Context, vote model.Vote) (bool, error) {
	vote.ID = 0
	vote.Option = nil

	var cast bool
	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Vote
		result := tx.Where("user_id = ? AND option_id = ?", vote.UserID, vote.OptionID).Limit(1).Find(&existing)
		if result.Error != nil {
			return wrapError(result.Error)
		}
		if result.RowsAffected > 0 {
			if err := tx.Delete(&model.Vote{}, existing.ID).Error; err != nil {
				return wrapError(err)
			}
			return nil
		}

		result = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "option_id"}},
			DoNothing: true,
		}).Create(&vote)
		if result.Error != nil {
			return wrapError(result.Error)
		}
		if result.RowsAffected == 0 {
			err := tx.Where("user_id = ? AND option_id = ?", vote.UserID, vote.OptionID).Delete(&model.Vote{}).Error
			if err != nil {
				return wrapError(err)
			}
			return nil
		}

		cast = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return cast, nil
}
