package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/alltimesound/customer-service-agent/agent/contract"
)

// transferTool is the routing tool every agent carries. Executing it yields
// a contract.TransferResult; the agent loop treats that as a handoff rather
// than a tool payload. The mediation layer may have rewritten agent_name
// before execution.
func transferTool() contract.Tool {
	return newTool(
		contract.ToolTransferToAgent,
		"Hand the conversation to another agent. Specialists may only hand back to the coordinator.",
		map[string]*schema.ParameterInfo{
			"agent_name": {Type: schema.String, Desc: "Name of the agent to transfer to", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			name := contract.AgentName(stringArg(args, "agent_name"))
			if name != contract.AgentCoordinator && !contract.IsSpecialist(name) {
				return nil, fmt.Errorf("unknown agent %q", name)
			}
			return contract.TransferResult{Agent: name}, nil
		},
	)
}

func randomID() string {
	return uuid.NewString()[:8]
}
