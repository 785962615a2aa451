// internal/panels/copilot-bridge/models.go
package copilotbridge

import "billing-intelligence/internal/models"

// State is where a copilot submission ended up for this request.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitted  State = "submitted"
	StateDisplaying State = "displaying"
)

// Input is one request's copilot form. Segment is empty when no segment
// could be selected.
type Input struct {
	Question  string `json:"question"`
	Segment   string `json:"segment,omitempty"`
	Submitted bool   `json:"submitted"`
}

type Output struct {
	State   State                 `json:"state"`
	Warning string                `json:"warning,omitempty"`
	Payload *models.PromptPayload `json:"payload,omitempty"`
	Prompt  string                `json:"-"`
	Model   string                `json:"model,omitempty"`
	Backend string                `json:"backend,omitempty"`
	Answer  string                `json:"answer,omitempty"`
}
