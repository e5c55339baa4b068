package api

import "testing"

func TestNewGenerationID(t *testing.T) {
	id := NewGenerationID()
	if !ValidGenerationID(id) {
		t.Errorf("generated ID %q does not match the expected format", id)
	}
}

func TestNewCallID(t *testing.T) {
	id := NewCallID()
	if len(id) != len("call_")+24 {
		t.Errorf("unexpected call ID length: %q", id)
	}
	if id[:5] != "call_" {
		t.Errorf("call ID missing prefix: %q", id)
	}
}

func TestIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewGenerationID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestValidGenerationIDRejects(t *testing.T) {
	invalid := []string{
		"",
		"gen_",
		"gen_short",
		"resp_abcdefghijklmnopqrstuvwx",
		"gen_abcdefghijklmnopqrstuvw!",
	}
	for _, id := range invalid {
		if ValidGenerationID(id) {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}
