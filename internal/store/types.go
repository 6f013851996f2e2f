package store

// RequestType distinguishes plain questions from permission requests.
type RequestType string

const (
	TypeQuestion   RequestType = "question"
	TypePermission RequestType = "permission"
)

// Status is the lifecycle state of a request. The only transition is
// pending -> answered; there is no way back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
)

// Request is one agent question waiting for (or holding) a human answer.
// Timestamps are Unix seconds, matching what the web UI consumes.
type Request struct {
	ID         string      `json:"id"`
	Question   string      `json:"question"`
	Context    string      `json:"context,omitempty"`
	Agent      string      `json:"agent,omitempty"`
	Task       string      `json:"task,omitempty"`
	Type       RequestType `json:"request_type"`
	Command    string      `json:"command,omitempty"`
	Status     Status      `json:"status"`
	Answer     string      `json:"answer,omitempty"`
	CreatedAt  int64       `json:"created_at"`
	AnsweredAt int64       `json:"answered_at,omitempty"`

	// Admission order, used to keep Pending() output stable when several
	// requests land within the same second.
	seq uint64
}

// CreateInput contains the fields needed to create a request.
type CreateInput struct {
	Question string
	Context  string
	Agent    string
	Task     string
	Type     RequestType
	Command  string
}
