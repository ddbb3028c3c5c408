package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopworks/go-commerce-backend/internal/auth"
	"github.com/shopworks/go-commerce-backend/internal/validation"
)

// registerCartRoutes wires the cart endpoints. Every route operates on the
// calling user's own cart.
func registerCartRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.GET("/cart", func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		crt, err := cfg.Carts.GetOrCreate(c.Request.Context(), id.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, crt)
	})

	r.POST("/cart", func(c *gin.Context) {
		id, _ := auth.FromContext(c)

		var req validation.AddToCartRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		crt, err := cfg.Carts.AddItem(c.Request.Context(), id.UserID, req.ProductID, req.Quantity, req.Size, req.Color)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, crt)
	})

	r.PUT("/cart/:itemId", func(c *gin.Context) {
		id, _ := auth.FromContext(c)

		var req validation.UpdateCartItemRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		crt, err := cfg.Carts.UpdateItem(c.Request.Context(), id.UserID, c.Param("itemId"), req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, crt)
	})

	r.DELETE("/cart/:itemId", func(c *gin.Context) {
		id, _ := auth.FromContext(c)

		crt, err := cfg.Carts.RemoveItem(c.Request.Context(), id.UserID, c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, crt)
	})

	r.DELETE("/cart", func(c *gin.Context) {
		id, _ := auth.FromContext(c)

		crt, err := cfg.Carts.Clear(c.Request.Context(), id.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, crt)
	})
}
