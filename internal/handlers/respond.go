package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopworks/go-commerce-backend/internal/cart"
	"github.com/shopworks/go-commerce-backend/internal/inventory"
	"github.com/shopworks/go-commerce-backend/internal/orders"
)

// respondData writes the uniform success envelope.
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage writes a success envelope with only a message.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// respondError maps a domain error to its HTTP status and writes the uniform
// error envelope. Unrecognized errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, orders.ErrNoItems),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrInvalidTransition):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, orders.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}
