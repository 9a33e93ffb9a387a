package contract

import "time"

// Role is the author of a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ActionKind is what a suggested chat action does when triggered.
type ActionKind string

const (
	ActionEmail        ActionKind = "email"
	ActionExplanation  ActionKind = "explanation"
	ActionLegal        ActionKind = "legal"
	ActionSuccessStory ActionKind = "success_story"
	ActionQuery        ActionKind = "query"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionEmail, ActionExplanation, ActionLegal, ActionSuccessStory, ActionQuery:
		return true
	}
	return false
}

// ChatAction is a follow-up the assistant suggests.
type ChatAction struct {
	Label   string     `json:"label"`
	Type    ActionKind `json:"type"`
	Payload string     `json:"payload,omitempty"`
}

// ChatMessage is one entry of a session transcript.
type ChatMessage struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Actions   []ChatAction `json:"actions,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Turn is the replayable part of a chat message.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Reply is the assistant answer for one turn.
type Reply struct {
	Text    string       `json:"text"`
	Actions []ChatAction `json:"actions,omitempty"`
}
