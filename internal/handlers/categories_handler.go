package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopworks/go-commerce-backend/internal/auth"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
	"github.com/shopworks/go-commerce-backend/internal/validation"
)

// registerCategoryRoutes wires category endpoints. Reads are public;
// mutations require the admin role.
func registerCategoryRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.GET("/categories", func(c *gin.Context) {
		cats, err := cfg.Catalog.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, cats)
	})

	admin := r.Group("/", auth.Middleware(), auth.RequireAdmin())

	admin.POST("/categories", func(c *gin.Context) {
		var req validation.CategoryRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		cat, err := cfg.Catalog.PutCategory(c.Request.Context(), catalog.Category{
			CategoryID:  uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, cat)
	})

	admin.PUT("/categories/:id", func(c *gin.Context) {
		var req validation.CategoryRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		existing, err := cfg.Catalog.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "category not found"})
			return
		}
		existing.Name = req.Name
		existing.Description = req.Description
		if req.Image != "" {
			existing.Image = req.Image
		}
		cat, err := cfg.Catalog.PutCategory(c.Request.Context(), *existing)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, cat)
	})

	admin.DELETE("/categories/:id", func(c *gin.Context) {
		if err := cfg.Catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "category deleted")
	})
}
