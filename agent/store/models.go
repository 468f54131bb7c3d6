package store

import "github.com/uptrace/bun"

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type ProfileData struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Phone             string `json:"phone,omitempty"`
	Birthdate         string `json:"birthdate,omitempty"`
	AccountNumber     string `json:"account_number,omitempty"`
	CustomerStartDate string `json:"customer_start_date,omitempty"`
}

type LoyaltyBalance struct {
	Points  int      `json:"points"`
	Tier    string   `json:"tier"`
	Rewards []string `json:"rewards,omitempty"`
}

type SubscriptionPreferences struct {
	Marketing      bool `json:"marketing"`
	Newsletters    bool `json:"newsletters,omitempty"`
	ProductUpdates bool `json:"product_updates,omitempty"`
}

type CommunicationPreferences struct {
	Email             bool `json:"email"`
	SMS               bool `json:"sms"`
	PushNotifications bool `json:"push_notifications"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price,omitempty"`
}

// Customer rows are soft-deleted only; every read filters deleted = false.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID                       string                   `bun:"id,pk" json:"id"`
	Email                    string                   `bun:"email,notnull,unique" json:"email"`
	Profile                  ProfileData              `bun:"profile,type:jsonb" json:"profile"`
	Loyalty                  LoyaltyBalance           `bun:"loyalty,type:jsonb" json:"loyalty"`
	Subscriptions            SubscriptionPreferences  `bun:"subscriptions,type:jsonb" json:"subscriptions"`
	CommunicationPreferences CommunicationPreferences `bun:"communication_preferences,type:jsonb" json:"communication_preferences"`
	Locked                   bool                     `bun:"locked,notnull,default:false" json:"locked"`
	Deleted                  bool                     `bun:"deleted,notnull,default:false" json:"deleted"`
}

type Address struct {
	bun.BaseModel `bun:"table:addresses,alias:a"`

	ID         string `bun:"id,pk" json:"id"`
	CustomerID string `bun:"customer_id,notnull" json:"customer_id"`
	Line1      string `bun:"line1,notnull" json:"line1"`
	Line2      string `bun:"line2" json:"line2,omitempty"`
	City       string `bun:"city" json:"city,omitempty"`
	State      string `bun:"state" json:"state,omitempty"`
	PostalCode string `bun:"postal_code" json:"postal_code,omitempty"`
	Country    string `bun:"country" json:"country,omitempty"`
}

type PaymentMethod struct {
	bun.BaseModel `bun:"table:payment_methods,alias:pm"`

	ID         string `bun:"id,pk" json:"id"`
	CustomerID string `bun:"customer_id,notnull" json:"customer_id"`
	Brand      string `bun:"brand,notnull" json:"brand"`
	Last4      string `bun:"last4,notnull" json:"last4"`
	ExpMonth   int    `bun:"exp_month,notnull" json:"exp_month"`
	ExpYear    int    `bun:"exp_year,notnull" json:"exp_year"`
	Token      string `bun:"token" json:"token,omitempty"`
}

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID            string  `bun:"id,pk" json:"product_id"`
	Name          string  `bun:"name,notnull" json:"name"`
	Description   string  `bun:"description" json:"description"`
	Price         float64 `bun:"price,notnull" json:"price"`
	Category      string  `bun:"category" json:"category"`
	StockQuantity int     `bun:"stock_quantity,notnull,default:0" json:"stock_quantity"`
	Rating        float64 `bun:"rating" json:"rating"`
	ImageURL      string  `bun:"image_url" json:"image_url,omitempty"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         string      `bun:"id,pk" json:"id"`
	CustomerID string      `bun:"customer_id,notnull" json:"customer_id"`
	Date       string      `bun:"date,notnull" json:"date"`
	Status     OrderStatus `bun:"status,notnull,default:'processing'" json:"status"`
	Total      float64     `bun:"total,notnull" json:"total"`
	Items      []OrderItem `bun:"items,type:jsonb" json:"items"`
}

// CustomerRecord is the aggregate bound into session state and validated by
// the mediation layer's tenant check.
type CustomerRecord struct {
	ID                       string                   `json:"id"`
	Email                    string                   `json:"email"`
	Profile                  ProfileData              `json:"profile"`
	Addresses                []Address                `json:"addresses,omitempty"`
	PaymentMethods           []PaymentMethod          `json:"payment_methods,omitempty"`
	Loyalty                  LoyaltyBalance           `json:"loyalty"`
	Subscriptions            SubscriptionPreferences  `json:"subscriptions"`
	CommunicationPreferences CommunicationPreferences `json:"communication_preferences"`
	Locked                   bool                     `json:"locked"`
	Deleted                  bool                     `json:"deleted"`
}
