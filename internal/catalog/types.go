package catalog

import "time"

// Product is the item stored in the products DynamoDB table. Stock is owned
// by the inventory ledger; catalog writes never touch it after creation.
type Product struct {
	ProductID   string    `dynamodbav:"product_id" json:"product_id"` // PK
	Name        string    `dynamodbav:"name" json:"name"`
	Description string    `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Image       string    `dynamodbav:"image,omitempty" json:"image,omitempty"`
	CategoryID  string    `dynamodbav:"category_id,omitempty" json:"category_id,omitempty"`
	Price       float64   `dynamodbav:"price" json:"price"`
	Stock       int       `dynamodbav:"stock" json:"stock"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// Category groups products for browsing.
type Category struct {
	CategoryID  string    `dynamodbav:"category_id" json:"category_id"` // PK
	Name        string    `dynamodbav:"name" json:"name"`
	Description string    `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Image       string    `dynamodbav:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	NextKey  string    `json:"next_key,omitempty"`
}
