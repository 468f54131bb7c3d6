package tool

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

var testDBSeq atomic.Int64

func newTestCatalog(t *testing.T) (*Catalog, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:tool_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	st, err := store.Open(store.Config{DSN: dsn})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Reset(context.Background()); err != nil {
		t.Fatalf("reset store: %v", err)
	}

	var idSeq atomic.Int64
	catalog := NewCatalog(st,
		WithCatalogClock(func() time.Time {
			return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
		}),
		WithIDGenerator(func() string {
			return fmt.Sprintf("t%03d", idSeq.Add(1))
		}),
	)
	return catalog, st
}

func execute(t *testing.T, c *Catalog, agent contract.AgentName, name string, args map[string]any) Result {
	t.Helper()

	tl, found := c.Lookup(agent, name)
	if !found {
		t.Fatalf("tool %s not in %s catalog", name, agent)
	}
	raw, err := tl.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("execute %s: %v", name, err)
	}
	result, isResult := raw.(Result)
	if !isResult {
		t.Fatalf("execute %s returned %T, want Result", name, raw)
	}
	return result
}

func TestCatalogShape(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	wantCounts := map[contract.AgentName]int{
		contract.AgentAccount:     10,
		contract.AgentOrders:      8,
		contract.AgentPayment:     8,
		contract.AgentProduct:     7,
		contract.AgentReturns:     6,
		contract.AgentTechSupport: 10,
		contract.AgentCoordinator: 1,
	}
	for agent, want := range wantCounts {
		tools := catalog.ToolsFor(agent)
		if len(tools) != want {
			t.Errorf("%s: %d tools, want %d", agent, len(tools), want)
		}
		if _, found := catalog.Lookup(agent, contract.ToolTransferToAgent); !found {
			t.Errorf("%s: transfer_to_agent missing", agent)
		}
		for _, tl := range tools {
			if tl.Info() == nil || tl.Info().Name != tl.Name() {
				t.Errorf("%s/%s: inconsistent tool info", agent, tl.Name())
			}
		}
	}
}

func TestCancelOrderStatusGating(t *testing.T) {
	t.Parallel()

	catalog, st := newTestCatalog(t)

	// Processing order cancels and refunds the total.
	result := execute(t, catalog, contract.AgentOrders, "cancel_order", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-1",
	})
	if !result.Success {
		t.Fatalf("cancel of processing order failed: %s", result.Message)
	}
	data := result.Data.(map[string]any)
	if data["refund_amount"] != 39.43 {
		t.Errorf("refund_amount = %v, want 39.43", data["refund_amount"])
	}
	order, err := st.GetOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != store.OrderCancelled {
		t.Errorf("status = %s, want cancelled", order.Status)
	}

	// A second cancel reports already-cancelled.
	result = execute(t, catalog, contract.AgentOrders, "cancel_order", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-1",
	})
	if result.Success || result.Message != "order ord-1 is already cancelled" {
		t.Errorf("repeat cancel: %+v", result)
	}

	// Shipped orders refuse with zero refund.
	result = execute(t, catalog, contract.AgentOrders, "cancel_order", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-2",
	})
	if result.Success {
		t.Fatal("cancel of shipped order succeeded")
	}
	if data := result.Data.(map[string]any); data["refund_amount"] != 0.0 {
		t.Errorf("shipped refund_amount = %v, want 0", data["refund_amount"])
	}
}

func TestModifyOrderOnlyWhileProcessing(t *testing.T) {
	t.Parallel()

	catalog, st := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentOrders, "modify_order", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-1",
		"items": []store.OrderItem{
			{ProductID: "028789", Quantity: 3},
		},
	})
	if !result.Success {
		t.Fatalf("modify failed: %s", result.Message)
	}
	order, err := st.GetOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Total != 7.50 {
		t.Errorf("total = %v, want 7.50", order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].Name == "" {
		t.Errorf("items not enriched: %+v", order.Items)
	}

	result = execute(t, catalog, contract.AgentOrders, "modify_order", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-2",
		"items":       []store.OrderItem{{ProductID: "123", Quantity: 1}},
	})
	if result.Success {
		t.Error("modify of shipped order succeeded")
	}
}

func TestOrderOwnershipScoping(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentOrders, "get_order_details", map[string]any{
		"customer_id": "cust-2",
		"order_id":    "ord-1",
	})
	if result.Success {
		t.Error("foreign order was served")
	}
}

func TestManageAddressesLifecycle(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentAccount, "manage_addresses", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"action":      "add",
		"address":     store.Address{Line1: "77 Cedar Court", City: "Riverton"},
	})
	if !result.Success {
		t.Fatalf("add failed: %s", result.Message)
	}
	added := result.Data.(store.Address)
	if added.ID == "" || added.CustomerID != store.DefaultCustomerID {
		t.Errorf("unexpected added address: %+v", added)
	}

	result = execute(t, catalog, contract.AgentAccount, "manage_addresses", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"action":      "list",
	})
	if !result.Success || len(result.Data.([]store.Address)) != 2 {
		t.Fatalf("list after add: %+v", result)
	}

	result = execute(t, catalog, contract.AgentAccount, "manage_addresses", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"action":      "delete",
		"address_id":  added.ID,
	})
	if !result.Success {
		t.Fatalf("delete failed: %s", result.Message)
	}

	// A raw mapping that survived coercion is rejected, not guessed at.
	result = execute(t, catalog, contract.AgentAccount, "manage_addresses", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"action":      "add",
		"address":     map[string]any{"street": "nameless"},
	})
	if result.Success {
		t.Error("raw mapping accepted as address")
	}
}

func TestVerifyIdentityIgnoresCase(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentAccount, "verify_identity", map[string]any{
		"customer_id":    store.DefaultCustomerID,
		"account_number": "a123456",
	})
	if !result.Success {
		t.Errorf("lowercased account number rejected: %s", result.Message)
	}

	result = execute(t, catalog, contract.AgentAccount, "verify_identity", map[string]any{
		"customer_id":    store.DefaultCustomerID,
		"account_number": "b000000",
	})
	if result.Success {
		t.Error("wrong account number accepted")
	}
}

func TestApplyPromoCode(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentPayment, "apply_promo_code", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"code":        "vinyl10",
	})
	if !result.Success {
		t.Errorf("valid code rejected: %s", result.Message)
	}

	result = execute(t, catalog, contract.AgentPayment, "apply_promo_code", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"code":        "expired99",
	})
	if result.Success {
		t.Error("unknown code accepted")
	}
}

func TestCheckItemAvailabilityByName(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentProduct, "check_item_availability", map[string]any{
		"item": "blue train",
	})
	if !result.Success {
		t.Fatalf("lookup failed: %s", result.Message)
	}
	data := result.Data.(map[string]any)
	if data["product_id"] != "jh1888" || data["in_stock"] != false {
		t.Errorf("unexpected availability: %+v", data)
	}
}

func TestInstantRefundRequiresDeliveredOrder(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentReturns, "issue_instant_refund", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-3",
		"reason":      "item arrived cracked",
	})
	if !result.Success {
		t.Fatalf("refund for delivered order failed: %s", result.Message)
	}

	result = execute(t, catalog, contract.AgentReturns, "issue_instant_refund", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-1",
		"reason":      "changed my mind",
	})
	if result.Success {
		t.Error("refund issued for processing order")
	}
}

func TestCreateReplacementOrderPersists(t *testing.T) {
	t.Parallel()

	catalog, st := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentReturns, "create_replacement_order", map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-3",
	})
	if !result.Success {
		t.Fatalf("replacement failed: %s", result.Message)
	}
	replacement := result.Data.(*store.Order)
	if replacement.Total != 0 || replacement.Status != store.OrderProcessing {
		t.Errorf("unexpected replacement: %+v", replacement)
	}

	orders, err := st.ListOrders(context.Background(), store.DefaultCustomerID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 4 {
		t.Errorf("orders = %d, want 4", len(orders))
	}
}

func TestTroubleshootingStepsMatchTopic(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	result := execute(t, catalog, contract.AgentTechSupport, "get_troubleshooting_steps", map[string]any{
		"topic": "my record keeps skipping",
	})
	if !result.Success {
		t.Fatalf("no guide matched: %s", result.Message)
	}
	data := result.Data.(map[string]any)
	if data["topic"] != "skipping" {
		t.Errorf("matched topic = %v", data["topic"])
	}

	result = execute(t, catalog, contract.AgentTechSupport, "get_troubleshooting_steps", map[string]any{
		"topic": "quantum flux capacitor",
	})
	if result.Success {
		t.Error("guide matched nonsense topic")
	}
}

func TestTransferToolReturnsHandoff(t *testing.T) {
	t.Parallel()

	catalog, _ := newTestCatalog(t)

	tl, found := catalog.Lookup(contract.AgentCoordinator, contract.ToolTransferToAgent)
	if !found {
		t.Fatal("coordinator transfer tool missing")
	}
	raw, err := tl.Execute(context.Background(), map[string]any{
		"agent_name": string(contract.AgentReturns),
	})
	if err != nil {
		t.Fatalf("execute transfer: %v", err)
	}
	handoff, isTransfer := raw.(contract.TransferResult)
	if !isTransfer || handoff.Agent != contract.AgentReturns {
		t.Errorf("unexpected transfer result: %#v (%T)", raw, raw)
	}

	if _, err := tl.Execute(context.Background(), map[string]any{"agent_name": "billing_desk"}); err == nil {
		t.Error("unknown agent accepted")
	}
}

func TestOrderToolsPropagateStorageErrors(t *testing.T) {
	t.Parallel()

	catalog, st := newTestCatalog(t)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	tl, found := catalog.Lookup(contract.AgentOrders, "get_order_details")
	if !found {
		t.Fatal("get_order_details not in orders catalog")
	}
	_, err := tl.Execute(context.Background(), map[string]any{
		"customer_id": store.DefaultCustomerID,
		"order_id":    "ord-1",
	})
	if err == nil {
		t.Fatal("closed store did not surface an error")
	}
}
