package mediation

import (
	"github.com/alltimesound/customer-service-agent/agent/contract"
)

// guardTransfer enforces the hub-and-spoke routing topology: a specialist
// may only hand control back to the coordinator. Any transfer_to_agent call
// from a specialist naming anything else, whether a peer, itself, or a name
// that doesn't exist, is rewritten to target the coordinator, which
// re-routes on the next turn.
func (p *Pipeline) guardTransfer(call *contract.ToolCall) {
	if call.Tool.Name() != contract.ToolTransferToAgent {
		return
	}
	if !contract.IsSpecialist(call.Agent) {
		return
	}

	target, ok := call.Args["agent_name"].(string)
	if !ok || target == string(contract.AgentCoordinator) {
		return
	}

	call.Args["agent_name"] = string(contract.AgentCoordinator)
	p.log.Info().
		Str("agent", string(call.Agent)).
		Str("requested_target", target).
		Str("rewritten_target", string(contract.AgentCoordinator)).
		Msg("peer transfer rewritten to coordinator")
}
