package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopworks/go-commerce-backend/internal/auth"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
	"github.com/shopworks/go-commerce-backend/internal/validation"
	"go.uber.org/zap"
)

const defaultProductPageSize = 50

// maxImageBytes caps product image uploads.
const maxImageBytes = 5 << 20

// registerProductRoutes wires catalog product endpoints. Reads are public;
// mutations require the admin role.
func registerProductRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.GET("/products", func(c *gin.Context) {
		limit := int32(defaultProductPageSize)
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = int32(n)
			}
		}
		page, err := cfg.Catalog.ListProducts(c.Request.Context(), c.Query("category_id"), c.Query("start_key"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, page)
	})

	r.GET("/products/:id", func(c *gin.Context) {
		p, err := cfg.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "product not found"})
			return
		}
		respondData(c, http.StatusOK, p)
	})

	admin := r.Group("/", auth.Middleware(), auth.RequireAdmin())

	admin.POST("/products", func(c *gin.Context) {
		var req validation.ProductRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		p, err := cfg.Catalog.PutProduct(c.Request.Context(), catalog.Product{
			ProductID:   uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
			CategoryID:  req.CategoryID,
			Price:       req.Price,
			Stock:       req.Stock,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, p)
	})

	admin.PUT("/products/:id", func(c *gin.Context) {
		var req validation.ProductRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		// stock is deliberately not updatable here; it belongs to the
		// inventory ledger and may be decremented concurrently
		p, err := cfg.Catalog.UpdateProductDetails(c.Request.Context(), c.Param("id"),
			req.Name, req.Description, req.CategoryID, req.Image, req.Price)
		if err != nil {
			respondError(c, err)
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "product not found"})
			return
		}
		respondData(c, http.StatusOK, p)
	})

	admin.DELETE("/products/:id", func(c *gin.Context) {
		if err := cfg.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "product deleted")
	})

	admin.POST("/products/:id/image", func(c *gin.Context) {
		if cfg.Media == nil {
			c.JSON(http.StatusNotImplemented, gin.H{"success": false, "message": "media storage not configured"})
			return
		}
		existing, err := cfg.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "product not found"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "image file is required"})
			return
		}
		if file.Size > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "image exceeds size limit"})
			return
		}
		src, err := file.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer src.Close()

		url, key, err := cfg.Media.Store(c.Request.Context(), file.Filename, file.Header.Get("Content-Type"), src)
		if err != nil {
			cfg.Logger.Error("media upload failed", zap.String("product_id", existing.ProductID), zap.Error(err))
			respondError(c, err)
			return
		}
		if err := cfg.Catalog.SetProductImage(c.Request.Context(), existing.ProductID, url); err != nil {
			// roll the orphaned object back so the bucket does not leak
			if derr := cfg.Media.Delete(c.Request.Context(), key); derr != nil {
				cfg.Logger.Warn("failed to delete orphaned media object", zap.String("key", key), zap.Error(derr))
			}
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"image": url})
	})
}
