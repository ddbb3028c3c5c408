package cart

import "time"

// Item is one line in a user's cart. ProductID, Size and Color together form
// the item's identity key: adding the same key again merges quantities.
// Price is the unit price captured when the item was first added.
type Item struct {
	ItemID    string  `dynamodbav:"item_id" json:"item_id"`
	ProductID string  `dynamodbav:"product_id" json:"product_id"`
	Name      string  `dynamodbav:"name" json:"name"`
	Image     string  `dynamodbav:"image,omitempty" json:"image,omitempty"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity"`
	Size      string  `dynamodbav:"size,omitempty" json:"size,omitempty"`
	Color     string  `dynamodbav:"color,omitempty" json:"color,omitempty"`
	Price     float64 `dynamodbav:"price" json:"price"`
}

// Cart is the single mutable cart per user, stored as one item keyed by
// user_id. Version is the optimistic-concurrency counter: every write is
// conditional on the version it read, so concurrent mutations of the same
// user's cart serialize instead of losing updates.
type Cart struct {
	UserID    string    `dynamodbav:"user_id" json:"user_id"` // PK
	Items     []Item    `dynamodbav:"items" json:"items"`
	Version   int64     `dynamodbav:"version" json:"-"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// sameKey reports whether the item matches the (product, size, color) key.
func (it Item) sameKey(productID, size, color string) bool {
	return it.ProductID == productID && it.Size == size && it.Color == color
}
