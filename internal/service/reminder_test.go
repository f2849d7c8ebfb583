package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/slack-go/slack"
)

func TestRemindEveryoneResponded(t *testing.T) {
	for _, mode := range []ReminderMode{ReminderBroadcast, ReminderDirect, ReminderList} {
		t.Run(string(mode), func(t *testing.T) {
			f, ts := respondedFixture(t)
			f.slack.Members = []string{"U2", "U4"}
			posted := len(f.slack.PostedMessages())

			users, err := f.reminders.Remind(context.Background(), mode, "C1", ts, "U1")
			if err != nil {
				t.Fatal(err)
			}
			if len(users) != 0 {
				t.Fatalf("expected nobody, got %s", ids(users))
			}
			ephemerals := f.slack.EphemeralMessages()
			if len(ephemerals) != 1 || ephemerals[0].Text != everyoneRespondedText || ephemerals[0].User != "U1" {
				t.Fatalf("expected a single everyone responded notice, got %+v", ephemerals)
			}
			if len(f.slack.PostedMessages()) != posted {
				t.Fatal("nobody must be notified")
			}
		})
	}
}

func TestRemindBroadcast(t *testing.T) {
	f, ts := respondedFixture(t)

	if _, err := f.reminders.Remind(context.Background(), ReminderBroadcast, "C1", ts, "U1"); err != nil {
		t.Fatal(err)
	}
	posted := f.slack.PostedMessages()
	last := posted[len(posted)-1]
	if last.ThreadTS != ts || last.Channel != "C1" {
		t.Fatalf("expected thread reply, got %+v", last)
	}
	want := "Dont forget :point_up:\n<@U1> <@U3> <@U5> <@U6>"
	if last.Text != want {
		t.Fatalf("got %q, want %q", last.Text, want)
	}
}

func TestRemindDirect(t *testing.T) {
	f, ts := respondedFixture(t)
	posted := len(f.slack.PostedMessages())

	users, err := f.reminders.Remind(context.Background(), ReminderDirect, "C1", ts, "U1")
	if err != nil {
		t.Fatal(err)
	}
	if ids(users) != "U1,U3,U5,U6" {
		t.Fatalf("unexpected users %s", ids(users))
	}

	dms := f.slack.PostedMessages()[posted:]
	if len(dms) != 4 {
		t.Fatalf("expected 4 direct messages, got %d", len(dms))
	}
	for i, id := range []string{"U1", "U3", "U5", "U6"} {
		if dms[i].Channel != "D"+id || !strings.Contains(dms[i].Text, ts) {
			t.Errorf("unexpected dm %+v", dms[i])
		}
	}

	ephemerals := f.slack.EphemeralMessages()
	if len(ephemerals) != 1 || ephemerals[0].Text != "Sent a reminder to: user1, user3, user5, user6" {
		t.Fatalf("unexpected summary %+v", ephemerals)
	}
}

func TestRemindDirectReportsUnreachable(t *testing.T) {
	f, ts := respondedFixture(t)
	f.slack.OpenIMErr = errors.New("cannot_dm_bot")

	if _, err := f.reminders.Remind(context.Background(), ReminderDirect, "C1", ts, "U1"); err != nil {
		t.Fatal(err)
	}
	ephemerals := f.slack.EphemeralMessages()
	if len(ephemerals) != 1 || !strings.Contains(ephemerals[0].Text, "Could not reach: user1, user3, user5, user6") {
		t.Fatalf("unexpected summary %+v", ephemerals)
	}
}

func TestRemindList(t *testing.T) {
	f, ts := respondedFixture(t)
	f.slack.Users[len(f.slack.Users)-1].RealName = "Sixth User"
	posted := len(f.slack.PostedMessages())

	if _, err := f.reminders.Remind(context.Background(), ReminderList, "C1", ts, "U1"); err != nil {
		t.Fatal(err)
	}
	ephemerals := f.slack.EphemeralMessages()
	want := "Looks like the following users have not responded:\nuser1, user3, user5, Sixth User"
	if len(ephemerals) != 1 || ephemerals[0].Text != want {
		t.Fatalf("unexpected listing %+v", ephemerals)
	}
	if len(f.slack.PostedMessages()) != posted {
		t.Fatal("listing must not notify anyone")
	}
}

func TestRemindRejectsUnknownMode(t *testing.T) {
	f, ts := respondedFixture(t)
	if _, err := f.reminders.Remind(context.Background(), ReminderMode("shout"), "C1", ts, "U1"); !errors.Is(err, dto.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDisplayNames(t *testing.T) {
	users := []slack.User{
		{Name: "a", RealName: "Real A", Profile: slack.UserProfile{DisplayName: "Display A"}},
		{Name: "b", RealName: "Real B"},
		{Name: "c"},
	}
	if got := strings.Join(displayNames(users), ","); got != "Display A,Real B,c" {
		t.Fatalf("got %s", got)
	}
}
