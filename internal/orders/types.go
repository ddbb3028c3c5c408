package orders

import "time"

// OrderItem is a denormalized snapshot of a product at checkout time. Later
// catalog changes never alter a placed order's recorded name, price or image.
type OrderItem struct {
	ProductID string  `dynamodbav:"product_id" json:"product_id"`
	Name      string  `dynamodbav:"name" json:"name"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity"`
	Size      string  `dynamodbav:"size,omitempty" json:"size,omitempty"`
	Price     float64 `dynamodbav:"price" json:"price"`
	Image     string  `dynamodbav:"image,omitempty" json:"image,omitempty"`
}

// ShippingAddress is where the order ships to.
type ShippingAddress struct {
	Street  string `dynamodbav:"street" json:"street"`
	City    string `dynamodbav:"city" json:"city"`
	State   string `dynamodbav:"state,omitempty" json:"state,omitempty"`
	Zip     string `dynamodbav:"zip" json:"zip"`
	Country string `dynamodbav:"country" json:"country"`
}

// PaymentResult is the opaque receipt recorded when an order is marked paid.
type PaymentResult struct {
	ID         string `dynamodbav:"id" json:"id"`
	Status     string `dynamodbav:"status" json:"status"`
	UpdateTime string `dynamodbav:"update_time,omitempty" json:"update_time,omitempty"`
	Email      string `dynamodbav:"email,omitempty" json:"email,omitempty"`
}

// Pricing carries the computed order totals.
type Pricing struct {
	ItemsPrice    float64 `dynamodbav:"items_price" json:"items_price"`
	TaxPrice      float64 `dynamodbav:"tax_price" json:"tax_price"`
	ShippingPrice float64 `dynamodbav:"shipping_price" json:"shipping_price"`
	TotalPrice    float64 `dynamodbav:"total_price" json:"total_price"`
}

// Order represents the item stored in the orders DynamoDB table. Orders are
// immutable once placed except for payment marking, status transitions and
// cancellation; they are never deleted.
type Order struct {
	OrderID         string          `dynamodbav:"order_id" json:"order_id"` // PK
	UserID          string          `dynamodbav:"user_id" json:"user_id"`   // GSI user_id-index
	Items           []OrderItem     `dynamodbav:"items" json:"items"`
	ShippingAddress ShippingAddress `dynamodbav:"shipping_address" json:"shipping_address"`
	PaymentMethod   string          `dynamodbav:"payment_method" json:"payment_method"`
	PaymentResult   *PaymentResult  `dynamodbav:"payment_result,omitempty" json:"payment_result,omitempty"`
	Pricing         Pricing         `dynamodbav:"pricing" json:"pricing"`
	IsPaid          bool            `dynamodbav:"is_paid" json:"is_paid"`
	PaidAt          *time.Time      `dynamodbav:"paid_at,omitempty" json:"paid_at,omitempty"`
	IsDelivered     bool            `dynamodbav:"is_delivered" json:"is_delivered"`
	DeliveredAt     *time.Time      `dynamodbav:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	Status          Status          `dynamodbav:"status" json:"status"`
	TrackingNumber  string          `dynamodbav:"tracking_number,omitempty" json:"tracking_number,omitempty"`
	CreatedAt       time.Time       `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `dynamodbav:"updated_at" json:"updated_at"`
}

// NewOrderItem is a submitted checkout line before the product snapshot is
// taken.
type NewOrderItem struct {
	ProductID string
	Quantity  int
	Size      string
}

// OrderPage is one page of the admin order listing.
type OrderPage struct {
	Orders  []Order `json:"orders"`
	NextKey string  `json:"next_key,omitempty"`
}
