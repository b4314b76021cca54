package models

import "time"

// DateRange is the resolved reporting window of the dashboard.
type DateRange struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DaysInPeriod int       `json:"days_in_period"`
	PrevStart    time.Time `json:"previous_start_date"`
	PrevEnd      time.Time `json:"previous_end_date"`
}

// Bucket is one labelled, half-open [Start, End) slice of a period.
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

type NewUserCounts struct {
	Today          int `json:"today"`
	Yesterday      int `json:"yesterday"`
	Week           int `json:"week"`
	Month          int `json:"month"`
	LastMonth      int `json:"last_month"`
	SelectedPeriod int `json:"selected_period"`
	PreviousPeriod int `json:"previous_period"`
}

type Growth struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Period  float64 `json:"period"`
}

type ProductCounts struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Inactive   int `json:"inactive"`
	Featured   int `json:"featured"`
	OutOfStock int `json:"out_of_stock"`
}

type ProductStats struct {
	AvgPerProducer           float64 `json:"avg_products_per_producer"`
	MaxPerProducer           int     `json:"max_products_per_producer"`
	ProducersWithProducts    int     `json:"producers_with_products"`
	ProducersWithoutProducts int     `json:"producers_without_products"`
}

// PeriodCounts holds the same windows as NewUserCounts for orders.
type PeriodCounts = NewUserCounts

// PeriodSums is the revenue counterpart of PeriodCounts.
type PeriodSums struct {
	Today          float64 `json:"today"`
	Yesterday      float64 `json:"yesterday"`
	Week           float64 `json:"week"`
	Month          float64 `json:"month"`
	LastMonth      float64 `json:"last_month"`
	SelectedPeriod float64 `json:"selected_period"`
	PreviousPeriod float64 `json:"previous_period"`
}

type RecentOrder struct {
	ID          int64     `json:"id"`
	OrderNumber string    `json:"order_number"`
	Customer    string    `json:"customer"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	ItemsCount  int       `json:"items_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type RecentUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type PendingProducerRow struct {
	ID           int64     `json:"id"`
	BusinessName string    `json:"business_name"`
	UserName     string    `json:"user_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type TopProduct struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity_sold"`
	Revenue  float64 `json:"revenue"`
}

type TopProducer struct {
	ID           int64   `json:"id"`
	BusinessName string  `json:"business_name"`
	OrdersCount  int     `json:"orders_count"`
	Revenue      float64 `json:"revenue"`
}

type TopCategory struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ProductsCount int    `json:"products_count"`
}

type OrderStats struct {
	ByStatus          []Counted `json:"by_status"`
	ByPaymentStatus   []Counted `json:"by_payment_status"`
	TotalRevenue      float64   `json:"total_revenue"`
	AverageOrderValue float64   `json:"average_order_value"`
	Last30DaysOrders  int       `json:"last_30_days_orders"`
	Last30DaysRevenue float64   `json:"last_30_days_revenue"`
}

type DashboardStats struct {
	UserCounts    []Counted     `json:"user_counts"`
	NewUserCounts NewUserCounts `json:"new_user_counts"`
	UserGrowth    Growth        `json:"user_growth"`

	ProductCounts ProductCounts `json:"product_counts"`
	ProductStats  ProductStats  `json:"product_stats"`

	OrderCounts         []Counted    `json:"order_counts"`
	OrderCountsByPeriod PeriodCounts `json:"order_counts_by_period"`
	OrderGrowth         Growth       `json:"order_growth"`

	TotalSales        float64    `json:"total_sales"`
	SalesByPeriod     PeriodSums `json:"sales_by_period"`
	SalesGrowth       Growth     `json:"sales_growth"`
	AverageOrderValue float64    `json:"average_order_value"`

	SalesByPeriodDetailed     []Labeled `json:"sales_by_period_detailed"`
	UserRegistrationsByPeriod []Labeled `json:"user_registrations_by_period"`
	OrdersByPeriod            []Labeled `json:"orders_by_period"`

	SalesByMonth             []Labeled `json:"sales_by_month"`
	UserRegistrationsByMonth []Labeled `json:"user_registrations_by_month"`
	OrdersByMonth            []Labeled `json:"orders_by_month"`

	PendingProducersCount int                  `json:"pending_producers_count"`
	RecentOrders          []RecentOrder        `json:"recent_orders"`
	RecentUsers           []RecentUser         `json:"recent_users"`
	PendingProducers      []PendingProducerRow `json:"pending_producers"`
	TopProducts           []TopProduct         `json:"top_products"`
	TopProducers          []TopProducer        `json:"top_producers"`
	CategoryCount         int                  `json:"category_count"`
	TopCategories         []TopCategory        `json:"top_categories"`
	AdoptableItemsCount   int                  `json:"adoptable_items_count"`
	OrderStats            OrderStats           `json:"order_stats"`

	DateRange DateRange `json:"date_range"`
}

// PendingCounts feeds the admin live feed's ready event.
type PendingCounts struct {
	Producers           int `json:"pending_producers"`
	Businesses          int `json:"pending_businesses"`
	Reviews             int `json:"pending_reviews"`
	UnansweredQuestions int `json:"unanswered_questions"`
}

// TimePoint is one timestamped event folded into bucket series. Value is
// the amount for sales and 1 for counts; Cancelled marks orders excluded
// from sales totals.
type TimePoint struct {
	At        time.Time
	Value     float64
	Cancelled bool
}
