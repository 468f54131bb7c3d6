package prompt

import (
	"strings"
	"testing"

	contractx "github.com/alltimesound/customer-service-agent/agent/contract"
)

func TestLoadSetCoversEveryAgent(t *testing.T) {
	t.Parallel()

	set := LoadSet()
	names := append([]contractx.AgentName{contractx.AgentCoordinator}, contractx.SpecialistNames...)
	for _, name := range names {
		p := set.For(name)
		if p == "" {
			t.Errorf("no prompt for %s", name)
			continue
		}
		if strings.TrimSpace(p) != p {
			t.Errorf("prompt for %s not trimmed", name)
		}
	}

	if set.For("billing_wizard") != "" {
		t.Error("unknown agent has a prompt")
	}
}
