package dto

// APIUser is the caller of the admin HTTP API, taken from a verified Firebase token.
type APIUser struct {
	UID   string
	Email string
}

type OptionResult struct {
	ID          uint     `json:"id"`
	Label       string   `json:"label"`
	URL         *string  `json:"url,omitempty"`
	Description *string  `json:"description,omitempty"`
	Creator     *string  `json:"creator,omitempty"`
	Votes       int      `json:"votes"`
	Voters      []string `json:"voters"`
}

type PollResult struct {
	ID          uint           `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Author      string         `json:"author"`
	Channel     string         `json:"channel"`
	TS          string         `json:"ts"`
	Published   bool           `json:"published"`
	Options     []OptionResult `json:"options"`
}

type PollSummary struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Channel   string `json:"channel"`
	TS        string `json:"ts"`
	Published bool   `json:"published"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
