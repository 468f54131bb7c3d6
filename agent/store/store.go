package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var ErrNotFound = errors.New("record not found")

// DefaultCustomerID is the sample customer bound to sessions that carry no
// profile of their own.
const DefaultCustomerID = "cust-1"

// Store is the relational record store backing the domain tools.
type Store struct {
	db *bun.DB
}

type Config struct {
	DSN string `envconfig:"DSN" split_words:"true" default:"file:customer_service.db?cache=shared"`
}

func Open(cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("store dsn is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := sqldb.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Reset drops and recreates every table, then loads the sample rows. The
// schema is not migrated incrementally; process start owns it outright.
func (s *Store) Reset(ctx context.Context) error {
	models := []any{
		(*Customer)(nil),
		(*Address)(nil),
		(*PaymentMethod)(nil),
		(*Product)(nil),
		(*Order)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		if _, err := s.db.NewCreateTable().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return s.seed(ctx)
}

/* ------------------------------- customers ------------------------------- */

func (s *Store) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	customer := new(Customer)
	err := s.db.NewSelect().Model(customer).
		Where("id = ?", customerID).
		Where("deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	customer := new(Customer)
	err := s.db.NewSelect().Model(customer).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Where("deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

// GetCustomerRecord assembles the aggregate bound into session state.
func (s *Store) GetCustomerRecord(ctx context.Context, customerID string) (*CustomerRecord, error) {
	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, err
	}
	methods, err := s.ListPaymentMethods(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &CustomerRecord{
		ID:                       customer.ID,
		Email:                    customer.Email,
		Profile:                  customer.Profile,
		Addresses:                addresses,
		PaymentMethods:           methods,
		Loyalty:                  customer.Loyalty,
		Subscriptions:            customer.Subscriptions,
		CommunicationPreferences: customer.CommunicationPreferences,
		Locked:                   customer.Locked,
		Deleted:                  customer.Deleted,
	}, nil
}

func (s *Store) UpdateEmail(ctx context.Context, customerID, email string) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Customer)(nil)).
		Set("email = ?", email).
		Where("id = ?", customerID).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func (s *Store) SoftDeleteCustomer(ctx context.Context, customerID string) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Customer)(nil)).
		Set("deleted = ?", true).
		Where("id = ?", customerID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func (s *Store) UnlockCustomer(ctx context.Context, customerID string) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Customer)(nil)).
		Set("locked = ?", false).
		Where("id = ?", customerID).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func (s *Store) UpdateSubscriptions(ctx context.Context, customerID string, prefs SubscriptionPreferences) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Customer)(nil)).
		Set("subscriptions = ?", prefs).
		Where("id = ?", customerID).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func (s *Store) UpdateCommunicationPreferences(ctx context.Context, customerID string, prefs CommunicationPreferences) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Customer)(nil)).
		Set("communication_preferences = ?", prefs).
		Where("id = ?", customerID).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

/* ------------------------------- addresses ------------------------------- */

func (s *Store) ListAddresses(ctx context.Context, customerID string) ([]Address, error) {
	var addresses []Address
	err := s.db.NewSelect().Model(&addresses).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *Store) AddAddress(ctx context.Context, address *Address) error {
	_, err := s.db.NewInsert().Model(address).Exec(ctx)
	return err
}

func (s *Store) UpdateAddress(ctx context.Context, address *Address) (bool, error) {
	res, err := s.db.NewUpdate().Model(address).
		WherePK().
		Where("customer_id = ?", address.CustomerID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func (s *Store) DeleteAddress(ctx context.Context, customerID, addressID string) (bool, error) {
	res, err := s.db.NewDelete().Model((*Address)(nil)).
		Where("id = ?", addressID).
		Where("customer_id = ?", customerID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

/* ---------------------------- payment methods ---------------------------- */

func (s *Store) ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	err := s.db.NewSelect().Model(&methods).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return methods, nil
}

func (s *Store) DeletePaymentMethod(ctx context.Context, customerID, paymentMethodID string) (bool, error) {
	res, err := s.db.NewDelete().Model((*PaymentMethod)(nil)).
		Where("id = ?", paymentMethodID).
		Where("customer_id = ?", customerID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

/* -------------------------------- products ------------------------------- */

func (s *Store) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product := new(Product)
	err := s.db.NewSelect().Model(product).Where("id = ?", productID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *Store) SearchProducts(ctx context.Context, query, category string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	q := s.db.NewSelect().Model((*Product)(nil)).Order("id ASC").Limit(limit)
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(description) LIKE ?", pattern, pattern)
	}
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		q = q.Where("lower(category) = ?", strings.ToLower(trimmed))
	}

	var products []Product
	if err := q.Scan(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

/* --------------------------------- orders -------------------------------- */

func (s *Store) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	order := new(Order)
	err := s.db.NewSelect().Model(order).Where("id = ?", orderID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, customerID string) ([]Order, error) {
	var orders []Order
	err := s.db.NewSelect().Model(&orders).
		Where("customer_id = ?", customerID).
		Order("date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Order)(nil)).
		Set("status = ?", status).
		Where("id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func (s *Store) ReplaceOrderItems(ctx context.Context, order *Order) error {
	_, err := s.db.NewUpdate().Model(order).
		Column("items", "total").
		WherePK().
		Exec(ctx)
	return err
}

func (s *Store) InsertOrder(ctx context.Context, order *Order) error {
	_, err := s.db.NewInsert().Model(order).Exec(ctx)
	return err
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
