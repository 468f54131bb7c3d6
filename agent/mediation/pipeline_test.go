package mediation

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

type fakeTool struct {
	name    string
	records map[string]reflect.Type
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Info() *schema.ToolInfo {
	return &schema.ToolInfo{Name: f.name}
}

func (f *fakeTool) RecordParams() map[string]reflect.Type { return f.records }

func (f *fakeTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"status": "ok"}, nil
}

func newTestPipeline(t *testing.T, opts ...LimiterOption) *Pipeline {
	t.Helper()

	loader := func(ctx context.Context) (string, error) {
		record := store.CustomerRecord{ID: store.DefaultCustomerID, Email: "alice@example.com"}
		encoded, err := json.Marshal(record)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
	p, err := New(loader, NewRateLimiter(DefaultQuota, DefaultWindow, opts...), zerolog.Nop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

func boundSession(t *testing.T, p *Pipeline) *sessionx.State {
	t.Helper()

	sess := sessionx.NewState("sess-1", time.Now())
	if err := p.BeforeTurn(context.Background(), sess); err != nil {
		t.Fatalf("before turn: %v", err)
	}
	return sess
}

func TestBeforeTurnBindsDefaultProfileOnce(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := sessionx.NewState("sess-1", time.Now())

	if err := p.BeforeTurn(context.Background(), sess); err != nil {
		t.Fatalf("before turn: %v", err)
	}
	if !sess.HasProfile() {
		t.Fatal("profile not bound")
	}

	sess.CustomerProfile = `{"id":"cust-other"}`
	if err := p.BeforeTurn(context.Background(), sess); err != nil {
		t.Fatalf("second before turn: %v", err)
	}
	if sess.CustomerProfile != `{"id":"cust-other"}` {
		t.Error("existing profile was overwritten")
	}
}

func TestCoerceRecordParam(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)

	tool := &fakeTool{
		name:    "update_shipping_address",
		records: map[string]reflect.Type{"address": reflect.TypeOf(store.Address{})},
	}
	call := &contract.ToolCall{
		Agent: contract.AgentAccount,
		Tool:  tool,
		Args: map[string]any{
			"customer_id": store.DefaultCustomerID,
			"address": map[string]any{
				"id":          "addr-9",
				"customer_id": store.DefaultCustomerID,
				"line1":       "55 Birch Road",
				"city":        "Springfield",
			},
		},
	}

	if denial := p.BeforeTool(context.Background(), call, sess); denial != "" {
		t.Fatalf("unexpected denial: %q", denial)
	}

	address, ok := call.Args["address"].(store.Address)
	if !ok {
		t.Fatalf("address not coerced, got %T", call.Args["address"])
	}
	// Coercion runs before normalization, so typed record fields keep their
	// original casing.
	if address.Line1 != "55 Birch Road" {
		t.Errorf("line1 = %q", address.Line1)
	}

	// Replaying the stage over the already-typed value must be a no-op.
	if denial := p.BeforeTool(context.Background(), call, sess); denial != "" {
		t.Fatalf("replay denied: %q", denial)
	}
	if _, ok := call.Args["address"].(store.Address); !ok {
		t.Errorf("replay changed type to %T", call.Args["address"])
	}
}

func TestCoerceSliceOfRecords(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)

	tool := &fakeTool{
		name:    "modify_order",
		records: map[string]reflect.Type{"items": reflect.TypeOf([]store.OrderItem{})},
	}
	call := &contract.ToolCall{
		Agent: contract.AgentOrders,
		Tool:  tool,
		Args: map[string]any{
			"items": []any{
				map[string]any{"product_id": "123", "quantity": float64(2)},
				map[string]any{"product_id": "2o972", "quantity": float64(1)},
			},
		},
	}

	if denial := p.BeforeTool(context.Background(), call, sess); denial != "" {
		t.Fatalf("unexpected denial: %q", denial)
	}
	items, ok := call.Args["items"].([]store.OrderItem)
	if !ok {
		t.Fatalf("items not coerced, got %T", call.Args["items"])
	}
	if len(items) != 2 || items[0].ProductID != "123" || items[0].Quantity != 2 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestCoerceIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)

	tool := &fakeTool{
		name:    "update_shipping_address",
		records: map[string]reflect.Type{"address": reflect.TypeOf(store.Address{})},
	}
	call := &contract.ToolCall{
		Agent: contract.AgentAccount,
		Tool:  tool,
		Args: map[string]any{
			"address": map[string]any{"line1": "55 Birch Road", "floor": float64(3)},
		},
	}

	if denial := p.BeforeTool(context.Background(), call, sess); denial != "" {
		t.Fatalf("unexpected denial: %q", denial)
	}
	address, ok := call.Args["address"].(store.Address)
	if !ok {
		t.Fatalf("address not coerced, got %T", call.Args["address"])
	}
	if address.Line1 != "55 Birch Road" {
		t.Errorf("address = %+v", address)
	}
}

func TestCoerceFailureKeepsRawValue(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)

	tool := &fakeTool{
		name:    "update_shipping_address",
		records: map[string]reflect.Type{"address": reflect.TypeOf(store.Address{})},
	}
	call := &contract.ToolCall{
		Agent: contract.AgentAccount,
		Tool:  tool,
		Args: map[string]any{
			// line1 is declared as a string; a number cannot decode into it.
			"address": map[string]any{"line1": float64(3), "city": "Main St"},
		},
	}

	if denial := p.BeforeTool(context.Background(), call, sess); denial != "" {
		t.Fatalf("unexpected denial: %q", denial)
	}
	raw, ok := call.Args["address"].(map[string]any)
	if !ok {
		t.Fatalf("raw value replaced, got %T", call.Args["address"])
	}
	if raw["city"] != "main st" {
		t.Errorf("raw value not normalized: %+v", raw)
	}
}

func TestLowercaseNormalizationRecurses(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)

	call := &contract.ToolCall{
		Agent: contract.AgentProduct,
		Tool:  &fakeTool{name: "search_products"},
		Args: map[string]any{
			"query": "Blue TRAIN",
			"filters": map[string]any{
				"category": "VINYL",
				"tags":     []any{"Jazz", "Limited"},
			},
			"limit": float64(5),
		},
	}

	if denial := p.BeforeTool(context.Background(), call, sess); denial != "" {
		t.Fatalf("unexpected denial: %q", denial)
	}
	if call.Args["query"] != "blue train" {
		t.Errorf("query = %v", call.Args["query"])
	}
	filters := call.Args["filters"].(map[string]any)
	if filters["category"] != "vinyl" {
		t.Errorf("category = %v", filters["category"])
	}
	tags := filters["tags"].([]any)
	if tags[0] != "jazz" || tags[1] != "limited" {
		t.Errorf("tags = %v", tags)
	}
	if call.Args["limit"] != float64(5) {
		t.Errorf("limit changed: %v", call.Args["limit"])
	}
}

func TestTenantCheckDenials(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	tool := &fakeTool{name: "get_order_history"}
	ctx := context.Background()

	t.Run("no profile", func(t *testing.T) {
		t.Parallel()
		sess := sessionx.NewState("sess-np", time.Now())
		call := &contract.ToolCall{Agent: contract.AgentOrders, Tool: tool, Args: map[string]any{"customer_id": "cust-1"}}
		want := "No customer profile selected. Please select a profile."
		if got := p.BeforeTool(ctx, call, sess); got != want {
			t.Errorf("denial = %q, want %q", got, want)
		}
	})

	t.Run("corrupt profile", func(t *testing.T) {
		t.Parallel()
		sess := sessionx.NewState("sess-cp", time.Now())
		sess.CustomerProfile = "{not json"
		call := &contract.ToolCall{Agent: contract.AgentOrders, Tool: tool, Args: map[string]any{"customer_id": "cust-1"}}
		want := "Customer profile couldn't be parsed. Please reload the customer data."
		if got := p.BeforeTool(ctx, call, sess); got != want {
			t.Errorf("denial = %q, want %q", got, want)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()
		sess := boundSession(t, p)
		call := &contract.ToolCall{Agent: contract.AgentOrders, Tool: tool, Args: map[string]any{"customer_id": "cust-2"}}
		want := "You cannot use the tool with customer_id cust-2, only for cust-1."
		if got := p.BeforeTool(ctx, call, sess); got != want {
			t.Errorf("denial = %q, want %q", got, want)
		}
	})

	t.Run("match passes", func(t *testing.T) {
		t.Parallel()
		sess := boundSession(t, p)
		call := &contract.ToolCall{Agent: contract.AgentOrders, Tool: tool, Args: map[string]any{"customer_id": "cust-1"}}
		if got := p.BeforeTool(ctx, call, sess); got != "" {
			t.Errorf("unexpected denial: %q", got)
		}
	})

	t.Run("tool without customer_id is exempt", func(t *testing.T) {
		t.Parallel()
		sess := sessionx.NewState("sess-ex", time.Now())
		sess.CustomerProfile = "{not json"
		call := &contract.ToolCall{Agent: contract.AgentProduct, Tool: tool, Args: map[string]any{"query": "jazz"}}
		if got := p.BeforeTool(ctx, call, sess); got != "" {
			t.Errorf("unexpected denial: %q", got)
		}
	})
}

func TestTransferGuardRewritesNonCoordinatorTargets(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)
	tool := &fakeTool{name: contract.ToolTransferToAgent}
	ctx := context.Background()

	cases := []struct {
		name   string
		target string
	}{
		{"peer specialist", string(contract.AgentReturns)},
		{"self", string(contract.AgentOrders)},
		{"misspelled specialist", "order_managment"},
		{"unknown agent", "billing_wizard"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			call := &contract.ToolCall{
				Agent: contract.AgentOrders,
				Tool:  tool,
				Args:  map[string]any{"agent_name": tc.target},
			}
			if denial := p.BeforeTool(ctx, call, sess); denial != "" {
				t.Fatalf("unexpected denial: %q", denial)
			}
			if call.Args["agent_name"] != string(contract.AgentCoordinator) {
				t.Errorf("target = %v, want coordinator", call.Args["agent_name"])
			}
		})
	}
}

func TestTransferGuardAllowsLegitimateHandoffs(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)
	tool := &fakeTool{name: contract.ToolTransferToAgent}
	ctx := context.Background()

	cases := []struct {
		name   string
		agent  contract.AgentName
		target string
	}{
		{"coordinator to specialist", contract.AgentCoordinator, string(contract.AgentReturns)},
		{"specialist back to coordinator", contract.AgentOrders, string(contract.AgentCoordinator)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			call := &contract.ToolCall{
				Agent: tc.agent,
				Tool:  tool,
				Args:  map[string]any{"agent_name": tc.target},
			}
			if denial := p.BeforeTool(ctx, call, sess); denial != "" {
				t.Fatalf("unexpected denial: %q", denial)
			}
			if call.Args["agent_name"] != tc.target {
				t.Errorf("target rewritten to %v", call.Args["agent_name"])
			}
		})
	}
}

func TestAfterToolPassesResultThrough(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	sess := boundSession(t, p)

	call := &contract.ToolCall{Agent: contract.AgentOrders, Tool: &fakeTool{name: "get_order_history"}}
	result := map[string]any{"orders": 3}
	got := p.AfterTool(context.Background(), call, sess, result)
	if !reflect.DeepEqual(got, result) {
		t.Errorf("result altered: %v", got)
	}
}
