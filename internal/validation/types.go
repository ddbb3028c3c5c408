package validation

// AddToCartRequest is the payload for POST /cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// UpdateCartItemRequest is the payload for PUT /cart/:itemId.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// OrderItemRequest is a single checkout line. Price is the unit price the
// client computed totals from; the order snapshot itself records the
// catalog price.
type OrderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Size      string  `json:"size,omitempty"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

// ShippingAddressRequest is the shipping destination submitted at checkout.
type ShippingAddressRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// PricingRequest carries the client-computed totals, cross-checked by
// struct-level validation.
type PricingRequest struct {
	ItemsPrice    float64 `json:"items_price" validate:"gte=0"`
	TaxPrice      float64 `json:"tax_price" validate:"gte=0"`
	ShippingPrice float64 `json:"shipping_price" validate:"gte=0"`
	TotalPrice    float64 `json:"total_price" validate:"gte=0"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required,oneof=COD Card PayPal Stripe"`
	Pricing         PricingRequest         `json:"pricing" validate:"required"`
}

// PayOrderRequest is the opaque payment receipt for PUT /orders/:id/pay.
type PayOrderRequest struct {
	ID         string `json:"id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	UpdateTime string `json:"update_time,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateOrderStatusRequest is the payload for PUT /orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// ProductRequest creates or replaces a catalog product.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty" validate:"omitempty,url"`
	CategoryID  string  `json:"category_id,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
}

// UpdateProfileRequest updates the caller's own profile.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}
