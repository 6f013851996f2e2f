package store

import "testing"

func TestDecisionRoundTrip(t *testing.T) {
	payload := Decision{Decision: DecisionApproved, Comment: "looks safe"}.Encode()

	d, ok := ParseDecision(payload)
	if !ok {
		t.Fatalf("ParseDecision(%q) returned false", payload)
	}
	if !d.Approved() {
		t.Fatal("expected approved decision")
	}
	if d.Comment != "looks safe" {
		t.Fatalf("unexpected comment: %q", d.Comment)
	}
}

func TestDecisionThroughStore(t *testing.T) {
	s := New()
	req, err := s.Create(CreateInput{
		Question: "Delete temp files?",
		Command:  "rm -rf /tmp/*",
		Type:     TypePermission,
		Agent:    "cleanup-bot",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if !s.Answer(req.ID, Decision{Decision: DecisionApproved}.Encode()) {
		t.Fatal("Answer returned false")
	}

	got, ok := s.Get(req.ID)
	if !ok {
		t.Fatal("Get returned false")
	}
	d, ok := ParseDecision(got.Answer)
	if !ok {
		t.Fatalf("stored answer %q is not a decision payload", got.Answer)
	}
	if d.Decision != DecisionApproved {
		t.Fatalf("expected approved, got %q", d.Decision)
	}
}

func TestParseDecisionRejectsFreeText(t *testing.T) {
	for _, answer := range []string{
		"Postgres",
		"",
		"{not json",
		`{"decision":"maybe"}`,
	} {
		if _, ok := ParseDecision(answer); ok {
			t.Fatalf("ParseDecision(%q) unexpectedly succeeded", answer)
		}
	}
}
