package handlers

import (
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopworks/go-commerce-backend/internal/auth"
	"github.com/shopworks/go-commerce-backend/internal/cart"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
	"github.com/shopworks/go-commerce-backend/internal/idempotency"
	"github.com/shopworks/go-commerce-backend/internal/media"
	"github.com/shopworks/go-commerce-backend/internal/orders"
	"github.com/shopworks/go-commerce-backend/internal/users"
	"go.uber.org/zap"
)

// HandlerConfig groups dependencies for the HTTP handlers.
type HandlerConfig struct {
	Catalog     *catalog.Store
	Users       *users.Store
	Carts       *cart.Store
	Orders      *orders.Service
	Idempotency *idempotency.Store // nil disables checkout de-duplication
	Media       media.Storage      // nil disables image upload
	Validator   *validatorv10.Validate
	Logger      *zap.Logger
}

// RegisterRoutes wires every route group. Catalog reads are public; cart,
// order and profile routes require an authenticated identity; mutations on
// the catalog and cross-user reads require the admin role.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	registerProductRoutes(r, cfg)
	registerCategoryRoutes(r, cfg)

	authed := r.Group("/", auth.Middleware())
	registerCartRoutes(authed, cfg)
	registerOrderRoutes(authed, cfg)
	registerUserRoutes(authed, cfg)
}
