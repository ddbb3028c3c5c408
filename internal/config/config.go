package config

import (
	"fmt"
	"os"
)

const (
	ServiceName    = "commerce-backend"
	ServiceVersion = "0.1.0"
)

// Config holds the table names and resource identifiers the service needs.
// Everything comes from the environment; Lambda and local runs share the
// same variables.
type Config struct {
	ProductsTable    string
	CategoriesTable  string
	UsersTable       string
	CartsTable       string
	OrdersTable      string
	IdempotencyTable string
	OrderQueueURL    string
	MediaBucket      string
	MediaBaseURL     string
}

// Load reads the configuration from environment variables. Table names are
// required; the queue and media bucket are optional so the API can run
// without the async pipeline during development.
func Load() (*Config, error) {
	cfg := &Config{
		ProductsTable:    os.Getenv("PRODUCTS_TABLE"),
		CategoriesTable:  os.Getenv("CATEGORIES_TABLE"),
		UsersTable:       os.Getenv("USERS_TABLE"),
		CartsTable:       os.Getenv("CARTS_TABLE"),
		OrdersTable:      os.Getenv("ORDERS_TABLE"),
		IdempotencyTable: os.Getenv("IDEMPOTENCY_TABLE"),
		OrderQueueURL:    os.Getenv("ORDER_EVENTS_QUEUE_URL"),
		MediaBucket:      os.Getenv("MEDIA_BUCKET"),
		MediaBaseURL:     os.Getenv("MEDIA_BASE_URL"),
	}

	required := map[string]string{
		"PRODUCTS_TABLE":   cfg.ProductsTable,
		"CATEGORIES_TABLE": cfg.CategoriesTable,
		"USERS_TABLE":      cfg.UsersTable,
		"CARTS_TABLE":      cfg.CartsTable,
		"ORDERS_TABLE":     cfg.OrdersTable,
	}
	for name, v := range required {
		if v == "" {
			return nil, fmt.Errorf("%s environment variable is required", name)
		}
	}

	return cfg, nil
}
