package store

import (
	"context"
	"fmt"
)

// seed loads the sample catalog and the demo customer the assistant ships
// with. Reset calls it after recreating the schema.
func (s *Store) seed(ctx context.Context) error {
	customers := []Customer{
		{
			ID:    DefaultCustomerID,
			Email: "alice@example.com",
			Profile: ProfileData{
				FirstName:         "Alice",
				LastName:          "Example",
				AccountNumber:     "A123456",
				CustomerStartDate: "2023-01-15",
			},
			Loyalty: LoyaltyBalance{
				Points:  120,
				Tier:    "silver",
				Rewards: []string{"5%_off_next_purchase"},
			},
			Subscriptions: SubscriptionPreferences{
				Marketing:   true,
				Newsletters: true,
			},
			CommunicationPreferences: CommunicationPreferences{
				Email:             true,
				SMS:               false,
				PushNotifications: true,
			},
		},
	}

	addresses := []Address{
		{
			ID:         "addr-1",
			CustomerID: DefaultCustomerID,
			Line1:      "123 Garden Lane",
			City:       "Greenfield",
			State:      "CA",
			PostalCode: "90210",
			Country:    "USA",
		},
	}

	paymentMethods := []PaymentMethod{
		{
			ID:         "pm-1",
			CustomerID: DefaultCustomerID,
			Brand:      "Visa",
			Last4:      "4242",
			ExpMonth:   12,
			ExpYear:    2026,
		},
	}

	products := []Product{
		{
			ID:            "123",
			Name:          "Abbey Road (Remastered LP)",
			Category:      "vinyl",
			Description:   "180g vinyl pressing of the classic album",
			Price:         25.98,
			StockQuantity: 150,
			Rating:        4.8,
		},
		{
			ID:            "2o972",
			Name:          "Kind of Blue (CD)",
			Category:      "cd",
			Description:   "Legacy edition compact disc",
			Price:         13.45,
			StockQuantity: 75,
			Rating:        4.9,
		},
		{
			ID:            "028789",
			Name:          "Record Cleaning Cloth",
			Category:      "accessories",
			Description:   "Anti-static microfiber cloth for vinyl care",
			Price:         2.50,
			StockQuantity: 200,
			Rating:        4.2,
		},
		{
			ID:            "jh1888",
			Name:          "Blue Train (Limited Blue Vinyl)",
			Category:      "vinyl",
			Description:   "Limited colored pressing, currently out of stock",
			Price:         34.99,
			StockQuantity: 0,
			Rating:        4.7,
		},
	}

	orders := []Order{
		{
			ID:         "ord-1",
			CustomerID: DefaultCustomerID,
			Date:       "2026-08-20",
			Status:     OrderProcessing,
			Total:      39.43,
			Items: []OrderItem{
				{ProductID: "123", Name: "Abbey Road (Remastered LP)", Quantity: 1, UnitPrice: 25.98},
				{ProductID: "2o972", Name: "Kind of Blue (CD)", Quantity: 1, UnitPrice: 13.45},
			},
		},
		{
			ID:         "ord-2",
			CustomerID: DefaultCustomerID,
			Date:       "2026-08-10",
			Status:     OrderShipped,
			Total:      34.99,
			Items: []OrderItem{
				{ProductID: "jh1888", Name: "Blue Train (Limited Blue Vinyl)", Quantity: 1, UnitPrice: 34.99},
			},
		},
		{
			ID:         "ord-3",
			CustomerID: DefaultCustomerID,
			Date:       "2026-07-02",
			Status:     OrderDelivered,
			Total:      5.00,
			Items: []OrderItem{
				{ProductID: "028789", Name: "Record Cleaning Cloth", Quantity: 2, UnitPrice: 2.50},
			},
		},
	}

	if _, err := s.db.NewInsert().Model(&customers).Exec(ctx); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&addresses).Exec(ctx); err != nil {
		return fmt.Errorf("seed addresses: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&paymentMethods).Exec(ctx); err != nil {
		return fmt.Errorf("seed payment methods: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&products).Exec(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&orders).Exec(ctx); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	return nil
}
