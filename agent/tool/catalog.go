package tool

import (
	"time"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

// Catalog assembles the per-agent tool sets over one shared store handle.
// Every agent additionally carries transfer_to_agent so the model can route.
type Catalog struct {
	byAgent map[contract.AgentName][]contract.Tool
}

type CatalogOption func(*catalogDeps)

type catalogDeps struct {
	store *store.Store
	now   func() time.Time
	newID func() string
}

// WithCatalogClock replaces the wall clock used for dates on fabricated
// results, for tests.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(d *catalogDeps) { d.now = now }
}

// WithIDGenerator replaces the id generator for tickets, labels, and
// replacement orders, for tests.
func WithIDGenerator(newID func() string) CatalogOption {
	return func(d *catalogDeps) { d.newID = newID }
}

func NewCatalog(st *store.Store, opts ...CatalogOption) *Catalog {
	deps := &catalogDeps{
		store: st,
		now:   time.Now,
		newID: randomID,
	}
	for _, opt := range opts {
		opt(deps)
	}

	byAgent := map[contract.AgentName][]contract.Tool{
		contract.AgentAccount:     accountTools(deps),
		contract.AgentOrders:      orderTools(deps),
		contract.AgentPayment:     paymentTools(deps),
		contract.AgentProduct:     productTools(deps),
		contract.AgentReturns:     returnsTools(deps),
		contract.AgentTechSupport: supportTools(deps),
		contract.AgentCoordinator: nil,
	}
	for agent, tools := range byAgent {
		byAgent[agent] = append(tools, transferTool())
	}
	return &Catalog{byAgent: byAgent}
}

func (c *Catalog) ToolsFor(agent contract.AgentName) []contract.Tool {
	return c.byAgent[agent]
}

func (c *Catalog) Lookup(agent contract.AgentName, name string) (contract.Tool, bool) {
	for _, t := range c.byAgent[agent] {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

var _ contract.Catalog = (*Catalog)(nil)
