package models

import (
	"fmt"
	"time"

	"github.com/dixis/dixis/pkg"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

var PaymentStatuses = []string{"pending", "paid", "failed", "refunded"}

// OrderNumber formats an order id for display.
func OrderNumber(id int64) string {
	return fmt.Sprintf("ORD-%08d", id)
}

type Order struct {
	ID              int64     `json:"id"`
	OrderNumber     string    `json:"order_number"`
	UserID          *int64    `json:"user_id"`
	BusinessID      *int64    `json:"business_id"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentMethod   *string   `json:"payment_method"`
	TotalAmount     float64   `json:"total_amount"`
	ShippingCost    float64   `json:"shipping_cost"`
	ShippingAddress *string   `json:"shipping_address"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User       *UserSummary `json:"user,omitempty"`
	Items      []OrderItem  `json:"items,omitempty"`
	ItemsCount int          `json:"items_count"`
}

type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProducerID  int64   `json:"producer_id"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// OrderRow is the compact order form used in dashboards and stats.
type OrderRow struct {
	ID          int64        `json:"id"`
	OrderNumber string       `json:"order_number"`
	Status      string       `json:"status"`
	Total       float64      `json:"total"`
	ItemsCount  int          `json:"items_count"`
	CreatedAt   time.Time    `json:"created_at"`
	User        *UserSummary `json:"user,omitempty"`
}

type OrderFilter struct {
	Status        string
	PaymentStatus string
	UserID        *int64
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          pkg.PageParams
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	v := pkg.ValidationErrors{}
	oneOf(v, "status", r.Status, OrderStatuses...)
	return v.Err()
}
