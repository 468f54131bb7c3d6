package contract

import (
	"context"
	"reflect"

	"github.com/cloudwego/eino/schema"
)

type AgentName string

const (
	AgentCoordinator AgentName = "customer_service_coordinator"
	AgentAccount     AgentName = "account_management"
	AgentOrders      AgentName = "order_management"
	AgentPayment     AgentName = "payment_billing"
	AgentProduct     AgentName = "product_information"
	AgentReturns     AgentName = "returns_refunds"
	AgentTechSupport AgentName = "technical_support"
)

// ToolTransferToAgent is the routing tool every agent carries.
const ToolTransferToAgent = "transfer_to_agent"

// SpecialistNames lists the six domain specialists the coordinator routes to.
var SpecialistNames = []AgentName{
	AgentAccount,
	AgentOrders,
	AgentPayment,
	AgentProduct,
	AgentReturns,
	AgentTechSupport,
}

func IsSpecialist(name AgentName) bool {
	for _, n := range SpecialistNames {
		if n == name {
			return true
		}
	}
	return false
}

// Tool is one business operation exposed to the model: a declared schema
// plus an executor. RecordParams names the parameters whose values the
// mediation layer should coerce from generic mappings into typed records.
type Tool interface {
	Name() string
	Info() *schema.ToolInfo
	RecordParams() map[string]reflect.Type
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// ToolCall is a single invocation the mediation pipeline gates. Args is
// mutated in place by the pre-tool stages (coercion, normalization,
// transfer-target rewrite).
type ToolCall struct {
	Agent AgentName
	Tool  Tool
	Args  map[string]any
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TransferResult is what transfer_to_agent returns; the specialist loop
// treats it as a handoff rather than a tool payload.
type TransferResult struct {
	Agent AgentName `json:"agent_name"`
}

type SpecialistRequest struct {
	SessionID   string
	UserMessage string
	// Context carried across handoffs within one turn, e.g. the routing
	// note the coordinator attached.
	Handoff string
}

type SpecialistResponse struct {
	Message  string
	Transfer AgentName // non-empty when the specialist hands control back
}
