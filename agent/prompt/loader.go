package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/alltimesound/customer-service-agent/agent/contract"
)

var (
	//go:embed template/coordinator.txt
	coordinatorRaw string

	//go:embed template/account.txt
	accountRaw string

	//go:embed template/orders.txt
	ordersRaw string

	//go:embed template/payment.txt
	paymentRaw string

	//go:embed template/product.txt
	productRaw string

	//go:embed template/returns.txt
	returnsRaw string

	//go:embed template/support.txt
	supportRaw string
)

// Set holds the system prompt for every agent.
type Set struct {
	byAgent map[contractx.AgentName]string
}

// LoadSet returns the embedded prompts, trimmed. Safe to call concurrently.
func LoadSet() Set {
	return Set{byAgent: map[contractx.AgentName]string{
		contractx.AgentCoordinator: strings.TrimSpace(coordinatorRaw),
		contractx.AgentAccount:     strings.TrimSpace(accountRaw),
		contractx.AgentOrders:      strings.TrimSpace(ordersRaw),
		contractx.AgentPayment:     strings.TrimSpace(paymentRaw),
		contractx.AgentProduct:     strings.TrimSpace(productRaw),
		contractx.AgentReturns:     strings.TrimSpace(returnsRaw),
		contractx.AgentTechSupport: strings.TrimSpace(supportRaw),
	}}
}

func (s Set) For(agent contractx.AgentName) string {
	return s.byAgent[agent]
}
