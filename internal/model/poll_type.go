package model

type PollType int

const (
	PollTypeMeeting PollType = 0
	PollTypeVote    PollType = 1
)

func (pt PollType) DefaultTitle() string {
	switch pt {
	case PollTypeMeeting:
		return "Schedule meeting"
	case PollTypeVote:
		return "Poll"
	default:
		return "Poll"
	}
}

func (pt PollType) String() string {
	switch pt {
	case PollTypeMeeting:
		return "meeting"
	case PollTypeVote:
		return "vote"
	default:
		return "unknown"
	}
}

func (pt PollType) Valid() bool {
	return pt == PollTypeMeeting || pt == PollTypeVote
}
