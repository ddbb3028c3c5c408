package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopworks/go-commerce-backend/internal/auth"
	"github.com/shopworks/go-commerce-backend/internal/idempotency"
	"github.com/shopworks/go-commerce-backend/internal/orders"
	"github.com/shopworks/go-commerce-backend/internal/validation"
)

// defaultOrderPageSize caps the admin listing page when the client sends no
// limit.
const defaultOrderPageSize = 50

// registerOrderRoutes wires checkout and order lifecycle endpoints.
func registerOrderRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()
		id, _ := auth.FromContext(c)

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		// Optional checkout de-duplication: with an Idempotency-Key header a
		// retried request replays the stored outcome instead of decrementing
		// stock twice.
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey != "" && cfg.Idempotency != nil {
			created, err := cfg.Idempotency.CreateIfNotExists(ctx, idempKey, "")
			if err != nil {
				respondError(c, err)
				return
			}
			if !created {
				replayIdempotent(c, cfg, idempKey)
				return
			}
		}

		items := make([]orders.NewOrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, orders.NewOrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Size:      it.Size,
			})
		}
		shipping := orders.ShippingAddress{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			State:   req.ShippingAddress.State,
			Zip:     req.ShippingAddress.Zip,
			Country: req.ShippingAddress.Country,
		}
		pricing := orders.Pricing{
			ItemsPrice:    req.Pricing.ItemsPrice,
			TaxPrice:      req.Pricing.TaxPrice,
			ShippingPrice: req.Pricing.ShippingPrice,
			TotalPrice:    req.Pricing.TotalPrice,
		}

		order, err := cfg.Orders.Create(ctx, id.UserID, items, shipping, req.PaymentMethod, pricing)
		if err != nil {
			if idempKey != "" && cfg.Idempotency != nil {
				_ = cfg.Idempotency.MarkFailed(ctx, idempKey, err.Error())
			}
			respondError(c, err)
			return
		}

		if idempKey != "" && cfg.Idempotency != nil {
			body, merr := json.Marshal(gin.H{"success": true, "data": order})
			if merr == nil {
				_ = cfg.Idempotency.MarkDone(ctx, idempKey, string(body), http.StatusCreated)
			}
		}
		respondData(c, http.StatusCreated, order)
	})

	r.GET("/orders/mine", func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		list, err := cfg.Orders.ListMine(c.Request.Context(), id.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	})

	r.GET("/orders", auth.RequireAdmin(), func(c *gin.Context) {
		limit := int32(defaultOrderPageSize)
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = int32(n)
			}
		}
		page, err := cfg.Orders.List(c.Request.Context(), c.Query("start_key"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, page)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		order, err := cfg.Orders.Get(c.Request.Context(), c.Param("id"), id.UserID, id.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, order)
	})

	r.PUT("/orders/:id/pay", func(c *gin.Context) {
		id, _ := auth.FromContext(c)

		var req validation.PayOrderRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		// ownership check before the payment write
		if _, err := cfg.Orders.Get(c.Request.Context(), c.Param("id"), id.UserID, id.Role); err != nil {
			respondError(c, err)
			return
		}

		order, err := cfg.Orders.MarkPaid(c.Request.Context(), c.Param("id"), orders.PaymentResult{
			ID:         req.ID,
			Status:     req.Status,
			UpdateTime: req.UpdateTime,
			Email:      req.Email,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, order)
	})

	r.PUT("/orders/:id/status", auth.RequireAdmin(), func(c *gin.Context) {
		var req validation.UpdateOrderStatusRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		order, err := cfg.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.TrackingNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, order)
	})

	r.PUT("/orders/:id/cancel", func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		order, err := cfg.Orders.Cancel(c.Request.Context(), c.Param("id"), id.UserID, id.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, order)
	})
}

// replayIdempotent answers a duplicate checkout from the stored idempotency
// record.
func replayIdempotent(c *gin.Context, cfg HandlerConfig, key string) {
	rec, err := cfg.Idempotency.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "idempotency record missing after conflict",
		})
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		respondData(c, http.StatusOK, gin.H{"order_id": rec.OrderID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"message": "checkout already in progress",
		})
	case idempotency.StatusFailed:
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "previous checkout attempt failed; retry with a new key",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "unknown idempotency status",
		})
	}
}
