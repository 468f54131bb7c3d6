package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

var testDBSeq atomic.Int64

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	s, err := Open(Config{DSN: dsn})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("reset store: %v", err)
	}
	return s
}

func TestResetSeedsSampleData(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	record, err := s.GetCustomerRecord(ctx, DefaultCustomerID)
	if err != nil {
		t.Fatalf("get customer record: %v", err)
	}
	if record.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", record.Email)
	}
	if record.Profile.FirstName != "Alice" || record.Profile.LastName != "Example" {
		t.Errorf("unexpected profile: %+v", record.Profile)
	}
	if record.Loyalty.Points != 120 || record.Loyalty.Tier != "silver" {
		t.Errorf("unexpected loyalty: %+v", record.Loyalty)
	}
	if len(record.Addresses) != 1 || record.Addresses[0].ID != "addr-1" {
		t.Errorf("unexpected addresses: %+v", record.Addresses)
	}
	if len(record.PaymentMethods) != 1 || record.PaymentMethods[0].Last4 != "4242" {
		t.Errorf("unexpected payment methods: %+v", record.PaymentMethods)
	}

	orders, err := s.ListOrders(ctx, DefaultCustomerID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("orders = %d, want 3", len(orders))
	}
	if orders[0].ID != "ord-1" {
		t.Errorf("newest order = %q, want ord-1", orders[0].ID)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	products, err := s.SearchProducts(ctx, "", "", 50)
	if err != nil {
		t.Fatalf("search products: %v", err)
	}
	if len(products) != 4 {
		t.Errorf("products = %d, want 4", len(products))
	}
}

func TestGetCustomerNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetCustomer(context.Background(), "cust-999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSoftDeleteHidesCustomer(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SoftDeleteCustomer(ctx, DefaultCustomerID)
	if err != nil || !ok {
		t.Fatalf("soft delete: ok=%v err=%v", ok, err)
	}
	if _, err := s.GetCustomer(ctx, DefaultCustomerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted customer still visible, err = %v", err)
	}
	if _, err := s.GetCustomerByEmail(ctx, "alice@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted customer visible by email, err = %v", err)
	}
}

func TestUpdateEmail(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.UpdateEmail(ctx, DefaultCustomerID, "alice.new@example.com")
	if err != nil || !ok {
		t.Fatalf("update email: ok=%v err=%v", ok, err)
	}
	customer, err := s.GetCustomer(ctx, DefaultCustomerID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if customer.Email != "alice.new@example.com" {
		t.Errorf("email = %q", customer.Email)
	}

	ok, err = s.UpdateEmail(ctx, "cust-999", "nobody@example.com")
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if ok {
		t.Error("update of missing customer reported success")
	}
}

func TestAddressLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	addr := &Address{
		ID:         "addr-2",
		CustomerID: DefaultCustomerID,
		Line1:      "9 Harbor Way",
		City:       "Oceanside",
		State:      "CA",
		PostalCode: "92054",
		Country:    "USA",
	}
	if err := s.AddAddress(ctx, addr); err != nil {
		t.Fatalf("add address: %v", err)
	}

	addr.Line1 = "9 Harbor Way, Unit B"
	ok, err := s.UpdateAddress(ctx, addr)
	if err != nil || !ok {
		t.Fatalf("update address: ok=%v err=%v", ok, err)
	}

	addresses, err := s.ListAddresses(ctx, DefaultCustomerID)
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("addresses = %d, want 2", len(addresses))
	}

	ok, err = s.DeleteAddress(ctx, DefaultCustomerID, "addr-2")
	if err != nil || !ok {
		t.Fatalf("delete address: ok=%v err=%v", ok, err)
	}
	ok, err = s.DeleteAddress(ctx, "cust-999", "addr-1")
	if err != nil {
		t.Fatalf("cross-tenant delete: %v", err)
	}
	if ok {
		t.Error("delete scoped to wrong customer reported success")
	}
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	vinyl, err := s.SearchProducts(ctx, "", "vinyl", 10)
	if err != nil {
		t.Fatalf("search by category: %v", err)
	}
	if len(vinyl) != 2 {
		t.Errorf("vinyl products = %d, want 2", len(vinyl))
	}

	byName, err := s.SearchProducts(ctx, "abbey", "", 10)
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "123" {
		t.Errorf("unexpected name search result: %+v", byName)
	}

	none, err := s.SearchProducts(ctx, "cassette", "", 10)
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %+v", none)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.UpdateOrderStatus(ctx, "ord-1", OrderCancelled)
	if err != nil || !ok {
		t.Fatalf("update status: ok=%v err=%v", ok, err)
	}
	order, err := s.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != OrderCancelled {
		t.Errorf("status = %q, want cancelled", order.Status)
	}
}

func TestDeletePaymentMethod(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.DeletePaymentMethod(ctx, DefaultCustomerID, "pm-1")
	if err != nil || !ok {
		t.Fatalf("delete payment method: ok=%v err=%v", ok, err)
	}
	methods, err := s.ListPaymentMethods(ctx, DefaultCustomerID)
	if err != nil {
		t.Fatalf("list payment methods: %v", err)
	}
	if len(methods) != 0 {
		t.Errorf("payment methods = %d, want 0", len(methods))
	}
}
