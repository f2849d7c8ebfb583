package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/slack-go/slack"
)

const slotLayout = "2006-01-02 15:04"

type state map[string]map[string]slack.BlockAction

func stateOf(v slack.View) state {
	if v.State == nil {
		return state{}
	}
	return v.State.Values
}

func (s state) action(blockID, actionID string) (slack.BlockAction, bool) {
	block, ok := s[blockID]
	if !ok {
		return slack.BlockAction{}, false
	}
	action, ok := block[actionID]
	return action, ok
}

// text returns the trimmed input value, nil when left blank.
func (s state) text(blockID string) *string {
	action, ok := s.action(blockID, actionText)
	if !ok {
		return nil
	}
	value := strings.TrimSpace(action.Value)
	if value == "" {
		return nil
	}
	return &value
}

func (s state) slot(blockID, dateAction, timeAction string) (*time.Time, error) {
	date, ok := s.action(blockID, dateAction)
	if !ok {
		return nil, fmt.Errorf("%w: missing date in %s", dto.ErrInvalidArgument, blockID)
	}
	clock, ok := s.action(blockID, timeAction)
	if !ok {
		return nil, fmt.Errorf("%w: missing time in %s", dto.ErrInvalidArgument, blockID)
	}
	return parseSlot(date.SelectedDate, clock.SelectedTime)
}

func parseSlot(date, clock string) (*time.Time, error) {
	if date == "" || clock == "" {
		return nil, fmt.Errorf("%w: incomplete time slot", dto.ErrInvalidArgument)
	}
	t, err := time.ParseInLocation(slotLayout, date+" "+clock, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInvalidArgument, err)
	}
	return &t, nil
}

// ParseSchedule reads a submitted schedule modal into a meeting poll.
func ParseSchedule(v slack.View, author string) (dto.CreatePollInput, error) {
	meta, err := dto.DecodeViewContext(v.PrivateMetadata)
	if err != nil {
		return dto.CreatePollInput{}, err
	}

	s := stateOf(v)
	input := dto.CreatePollInput{
		Type:        model.PollTypeMeeting,
		Author:      author,
		Channel:     meta.Channel,
		Description: s.text(blockDescription),
	}
	if title := s.text(blockTitle); title != nil {
		input.Title = *title
	}

	for i := 0; i < meta.Slots; i++ {
		blockID := fmt.Sprintf(timeslotBlockName, i)
		if _, ok := s[blockID]; !ok {
			continue
		}
		slot, err := s.slot(blockID, actionDate, actionTime)
		if err != nil {
			return dto.CreatePollInput{}, err
		}
		input.Options = append(input.Options, dto.OptionInput{Time: slot})
	}
	if len(input.Options) == 0 {
		return dto.CreatePollInput{}, fmt.Errorf("%w: no time slots", dto.ErrInvalidArgument)
	}

	return input, nil
}

// ParseVotePoll reads a submitted vote poll modal. Options are given one per line.
func ParseVotePoll(v slack.View, author string) (dto.CreatePollInput, error) {
	meta, err := dto.DecodeViewContext(v.PrivateMetadata)
	if err != nil {
		return dto.CreatePollInput{}, err
	}

	s := stateOf(v)
	input := dto.CreatePollInput{
		Type:                 model.PollTypeVote,
		Author:               author,
		Channel:              meta.Channel,
		Description:          s.text(blockDescription),
		AddOptionDescription: s.text(blockOptionsHint),
	}
	if title := s.text(blockTitle); title != nil {
		input.Title = *title
	}
	if settings, ok := s.action(blockSettings, actionSettings); ok {
		for _, selected := range settings.SelectedOptions {
			switch selected.Value {
			case settingShowVotes:
				input.DisplayUsersVotes = true
			case settingOpenToAll:
				input.UsersCanAddOption = true
			}
		}
	}

	if lines := s.text(blockOptions); lines != nil {
		for _, line := range strings.Split(*lines, "\n") {
			name := strings.TrimSpace(line)
			if name == "" {
				continue
			}
			input.Options = append(input.Options, dto.OptionInput{Name: &name})
		}
	}
	if len(input.Options) == 0 {
		return dto.CreatePollInput{}, fmt.Errorf("%w: no options", dto.ErrInvalidArgument)
	}

	return input, nil
}

// ParseAddOption reads an add option submission for a poll of the given type.
func ParseAddOption(v slack.View, pollType model.PollType) (dto.OptionInput, error) {
	s := stateOf(v)
	if pollType == model.PollTypeMeeting {
		date, _ := s.action(blockDate, actionDate)
		clock, _ := s.action(blockTime, actionTime)
		slot, err := parseSlot(date.SelectedDate, clock.SelectedTime)
		if err != nil {
			return dto.OptionInput{}, err
		}
		return dto.OptionInput{Time: slot}, nil
	}

	name := s.text(blockName)
	if name == nil {
		return dto.OptionInput{}, fmt.Errorf("%w: option name is required", dto.ErrInvalidArgument)
	}
	return dto.OptionInput{
		Name:        name,
		Description: s.text(blockDescription),
		URL:         s.text(blockURL),
	}, nil
}

func ParseRemoveOptions(v slack.View) ([]uint, error) {
	action, _ := stateOf(v).action(blockRemove, actionOptions)

	ids := make([]uint, 0, len(action.SelectedOptions))
	for _, selected := range action.SelectedOptions {
		id, err := strconv.ParseUint(selected.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: option id %q", dto.ErrInvalidArgument, selected.Value)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// NextSchedule rebuilds the schedule modal with one more time slot.
func NextSchedule(v slack.View, now time.Time) (slack.ModalViewRequest, error) {
	meta, err := dto.DecodeViewContext(v.PrivateMetadata)
	if err != nil {
		return slack.ModalViewRequest{}, err
	}
	meta.Slots++
	return Schedule(meta, now), nil
}
