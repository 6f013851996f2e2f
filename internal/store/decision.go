package store

import (
	"encoding/json"
	"strings"
)

// Decision outcomes for permission requests.
const (
	DecisionApproved = "approved"
	DecisionDenied   = "denied"
)

// Decision is the structured answer to a permission request. It travels
// inside the plain answer field as a small JSON payload, so the store
// itself never needs to understand it.
type Decision struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment,omitempty"`
}

// Approved reports whether the decision grants the request.
func (d Decision) Approved() bool {
	return d.Decision == DecisionApproved
}

// Encode renders the decision as the answer-field payload.
func (d Decision) Encode() string {
	encoded, err := json.Marshal(d)
	if err != nil {
		// Decision has only string fields; Marshal cannot fail.
		return `{"decision":"denied"}`
	}
	return string(encoded)
}

// ParseDecision decodes an answer payload back into a Decision. It returns
// false for answers that are not decision payloads (free-text answers to a
// plain question, or a truncated/garbled payload).
func ParseDecision(answer string) (Decision, bool) {
	answer = strings.TrimSpace(answer)
	if !strings.HasPrefix(answer, "{") {
		return Decision{}, false
	}
	var d Decision
	if err := json.Unmarshal([]byte(answer), &d); err != nil {
		return Decision{}, false
	}
	if d.Decision != DecisionApproved && d.Decision != DecisionDenied {
		return Decision{}, false
	}
	return d, true
}
