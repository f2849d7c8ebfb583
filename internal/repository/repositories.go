package repository

import (
	"github.com/krakosik/pollbot/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Repositories interface {
	Poll() PollRepository
	Option() OptionRepository
	Vote() VoteRepository
}

type repositories struct {
	pollRepository   PollRepository
	optionRepository OptionRepository
	voteRepository   VoteRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	err := db.AutoMigrate(&model.Poll{}, &model.Option{}, &model.Vote{})
	if err != nil {
		logrus.Panic(err)
	}
	pollRepository := newPollRepository(db)
	optionRepository := newOptionRepository(db)
	voteRepository := newVoteRepository(db)
	return &repositories{
		pollRepository:   pollRepository,
		optionRepository: optionRepository,
		voteRepository:   voteRepository,
	}
}

func (r repositories) Poll() PollRepository {
	return r.pollRepository
}

func (r repositories) Option() OptionRepository {
	return r.optionRepository
}

func (r repositories) Vote() VoteRepository {
	return r.voteRepository
}
