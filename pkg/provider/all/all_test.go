package all

import (
	"testing"

	"github.com/blazorly/aisdk-go/pkg/provider"
)

func TestDefaultRegistry_Types(t *testing.T) {
	r := DefaultRegistry()

	want := []string{"anthropic", "ollama", "openai", "openaicompat"}
	got := r.Types()
	if len(got) != len(want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultRegistry_OpensByType(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.Open(provider.Config{Type: "ollama"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	if p.Name() != "ollama" {
		t.Errorf("name = %q, want %q", p.Name(), "ollama")
	}
}

func TestDefaultRegistry_UnknownType(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Open(provider.Config{Type: "bedrock"})
	if err == nil {
		t.Fatal("expected error for an unregistered type")
	}
}
