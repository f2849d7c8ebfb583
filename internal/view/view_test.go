package view

import (
	"errors"
	"testing"
	"time"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/slack-go/slack"
)

var now = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func submitted(meta dto.ViewContext, values state) slack.View {
	return slack.View{
		PrivateMetadata: meta.Encode(),
		State:           &slack.ViewState{Values: values},
	}
}

func textValue(value string) map[string]slack.BlockAction {
	return map[string]slack.BlockAction{actionText: {Value: value}}
}

func slotValue(date, clock string) map[string]slack.BlockAction {
	return map[string]slack.BlockAction{
		actionDate: {SelectedDate: date},
		actionTime: {SelectedTime: clock},
	}
}

func TestScheduleModalSlots(t *testing.T) {
	v := Schedule(dto.ViewContext{Channel: "C1", Slots: 3}, now)
	if v.CallbackID != CallbackSchedule {
		t.Fatalf("unexpected callback %s", v.CallbackID)
	}

	var slots int
	for _, block := range v.Blocks.BlockSet {
		if action, ok := block.(*slack.ActionBlock); ok && action.BlockID != blockAddTimeslot {
			slots++
		}
	}
	if slots != 3 {
		t.Fatalf("expected 3 timeslot blocks, got %d", slots)
	}

	meta, err := dto.DecodeViewContext(v.PrivateMetadata)
	if err != nil || meta.Channel != "C1" || meta.Slots != 3 {
		t.Fatalf("unexpected metadata %+v (%v)", meta, err)
	}
}

func TestScheduleModalClampsSlots(t *testing.T) {
	for _, slots := range []int{0, MaxTimeslots + 5} {
		v := Schedule(dto.ViewContext{Channel: "C1", Slots: slots}, now)
		meta, _ := dto.DecodeViewContext(v.PrivateMetadata)
		if meta.Slots < 1 || meta.Slots > MaxTimeslots {
			t.Fatalf("slots %d not clamped: %d", slots, meta.Slots)
		}
	}
}

func TestNextScheduleAddsSlot(t *testing.T) {
	first := Schedule(dto.ViewContext{Channel: "C1", Slots: 1}, now)
	next, err := NextSchedule(slack.View{PrivateMetadata: first.PrivateMetadata}, now)
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := dto.DecodeViewContext(next.PrivateMetadata)
	if meta.Slots != 2 || meta.Channel != "C1" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}

func TestParseSchedule(t *testing.T) {
	v := submitted(dto.ViewContext{Channel: "C1", Slots: 2}, state{
		blockTitle:  textValue("  Standup "),
		"timeslot-0": slotValue("2024-03-04", "09:30"),
		"timeslot-1": slotValue("2024-03-05", "14:00"),
	})

	input, err := ParseSchedule(v, "U1")
	if err != nil {
		t.Fatal(err)
	}
	if input.Type != model.PollTypeMeeting || input.Title != "Standup" || input.Channel != "C1" || input.Author != "U1" {
		t.Fatalf("unexpected input %+v", input)
	}
	if len(input.Options) != 2 || !input.Options[0].Time.Equal(now) {
		t.Fatalf("unexpected options %+v", input.Options)
	}
	if input.Description != nil {
		t.Fatal("blank description must stay nil")
	}
}

func TestParseScheduleErrors(t *testing.T) {
	tests := []struct {
		name string
		view slack.View
	}{
		{"missing metadata", slack.View{}},
		{"no slots", submitted(dto.ViewContext{Channel: "C1", Slots: 1}, state{})},
		{"bad time", submitted(dto.ViewContext{Channel: "C1", Slots: 1}, state{"timeslot-0": slotValue("2024-03-04", "25:99")})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchedule(tt.view, "U1"); !errors.Is(err, dto.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestParseVotePoll(t *testing.T) {
	v := submitted(dto.ViewContext{Channel: "C1"}, state{
		blockTitle:   textValue("Lunch"),
		blockOptions: textValue("Pizza\n\n  Sushi  \n"),
		blockSettings: {actionSettings: {SelectedOptions: []slack.OptionBlockObject{
			{Value: settingOpenToAll},
		}}},
	})

	input, err := ParseVotePoll(v, "U1")
	if err != nil {
		t.Fatal(err)
	}
	if len(input.Options) != 2 || *input.Options[1].Name != "Sushi" {
		t.Fatalf("unexpected options %+v", input.Options)
	}
	if !input.UsersCanAddOption || input.DisplayUsersVotes {
		t.Fatalf("unexpected settings %+v", input)
	}

	empty := submitted(dto.ViewContext{Channel: "C1"}, state{blockOptions: textValue(" \n ")})
	if _, err := ParseVotePoll(empty, "U1"); !errors.Is(err, dto.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestParseAddOption(t *testing.T) {
	meeting := slack.View{State: &slack.ViewState{Values: state{
		blockDate: {actionDate: {SelectedDate: "2024-03-04"}},
		blockTime: {actionTime: {SelectedTime: "09:30"}},
	}}}
	input, err := ParseAddOption(meeting, model.PollTypeMeeting)
	if err != nil || input.Time == nil || !input.Time.Equal(now) || input.Name != nil {
		t.Fatalf("unexpected meeting option %+v (%v)", input, err)
	}

	vote := slack.View{State: &slack.ViewState{Values: state{
		blockName: textValue("Tacos"),
		blockURL:  textValue("https://example.com"),
	}}}
	input, err = ParseAddOption(vote, model.PollTypeVote)
	if err != nil || *input.Name != "Tacos" || *input.URL != "https://example.com" || input.Time != nil {
		t.Fatalf("unexpected vote option %+v (%v)", input, err)
	}

	if _, err := ParseAddOption(slack.View{}, model.PollTypeVote); !errors.Is(err, dto.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestParseRemoveOptions(t *testing.T) {
	v := slack.View{State: &slack.ViewState{Values: state{
		blockRemove: {actionOptions: {SelectedOptions: []slack.OptionBlockObject{{Value: "3"}, {Value: "9"}}}},
	}}}
	ids, err := ParseRemoveOptions(v)
	if err != nil || len(ids) != 2 || ids[0] != 3 || ids[1] != 9 {
		t.Fatalf("unexpected ids %v (%v)", ids, err)
	}

	bad := slack.View{State: &slack.ViewState{Values: state{
		blockRemove: {actionOptions: {SelectedOptions: []slack.OptionBlockObject{{Value: "x"}}}},
	}}}
	if _, err := ParseRemoveOptions(bad); !errors.Is(err, dto.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAddOptionModalPerType(t *testing.T) {
	hint := "Only places within walking distance"
	vote := AddOption(model.Poll{Type: model.PollTypeVote, AddOptionDescription: &hint}, dto.ViewContext{PollID: 4}, now)
	if _, ok := vote.Blocks.BlockSet[0].(*slack.SectionBlock); !ok {
		t.Fatalf("expected description section first, got %T", vote.Blocks.BlockSet[0])
	}
	if len(vote.Blocks.BlockSet) != 4 {
		t.Fatalf("expected description and three inputs, got %d blocks", len(vote.Blocks.BlockSet))
	}

	meeting := AddOption(model.Poll{Type: model.PollTypeMeeting}, dto.ViewContext{PollID: 4}, now)
	if len(meeting.Blocks.BlockSet) != 2 {
		t.Fatalf("expected date and time inputs, got %d blocks", len(meeting.Blocks.BlockSet))
	}
}

func TestRemoveOptionsModalListsOptions(t *testing.T) {
	a, b := "A", "B"
	v := RemoveOptions(model.Poll{Options: []model.Option{{ID: 1, Name: &a}, {ID: 2, Name: &b}}}, dto.ViewContext{PollID: 1})
	input := v.Blocks.BlockSet[0].(*slack.InputBlock)
	selectElement := input.Element.(*slack.MultiSelectBlockElement)
	if len(selectElement.Options) != 2 || selectElement.Options[1].Value != "2" {
		t.Fatalf("unexpected options %+v", selectElement.Options)
	}
}
