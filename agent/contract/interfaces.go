package contract

import (
	"context"

	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
)

// Specialist is one domain agent: it runs a bounded tool-calling loop and
// either answers the customer or hands control back to the coordinator.
type Specialist interface {
	Run(ctx context.Context, sess *sessionx.State, req SpecialistRequest) (SpecialistResponse, error)
}

// Registry resolves specialists by name.
type Registry interface {
	Specialist(name AgentName) (Specialist, bool)
	Names() []AgentName
}

// Pipeline is the tool-call mediation layer. Any agent-hosting integration
// invokes these stages around its own turn/model/tool lifecycle.
type Pipeline interface {
	// BeforeTurn binds the default customer profile when the session has none.
	BeforeTurn(ctx context.Context, sess *sessionx.State) error
	// BeforeModel applies the per-session model-call rate limit; it blocks
	// when the quota is exceeded.
	BeforeModel(ctx context.Context, sess *sessionx.State) error
	// BeforeTool sanitizes call.Args in place and returns a non-empty denial
	// message when the call must not proceed.
	BeforeTool(ctx context.Context, call *ToolCall, sess *sessionx.State) string
	// AfterTool post-processes a tool result; today a pass-through.
	AfterTool(ctx context.Context, call *ToolCall, sess *sessionx.State, result any) any
}

// Catalog exposes the per-agent tool sets.
type Catalog interface {
	ToolsFor(agent AgentName) []Tool
	Lookup(agent AgentName, tool string) (Tool, bool)
}
