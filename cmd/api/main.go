package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/shopworks/go-commerce-backend/internal/aws"
	"github.com/shopworks/go-commerce-backend/internal/cart"
	"github.com/shopworks/go-commerce-backend/internal/catalog"
	"github.com/shopworks/go-commerce-backend/internal/config"
	"github.com/shopworks/go-commerce-backend/internal/handlers"
	"github.com/shopworks/go-commerce-backend/internal/idempotency"
	"github.com/shopworks/go-commerce-backend/internal/inventory"
	"github.com/shopworks/go-commerce-backend/internal/logging"
	"github.com/shopworks/go-commerce-backend/internal/media"
	"github.com/shopworks/go-commerce-backend/internal/orders"
	"github.com/shopworks/go-commerce-backend/internal/users"
	"github.com/shopworks/go-commerce-backend/internal/validation"
	"go.uber.org/zap"
)

// idempotencyTTL is how long a checkout idempotency key blocks duplicates.
const idempotencyTTL = 48 * time.Hour

func setupRouter(logger *zap.Logger, cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	catalogStore := catalog.NewStore(clients.DynamoDB, cfg.ProductsTable, cfg.CategoriesTable)
	ledger := inventory.NewLedger(clients.DynamoDB, cfg.ProductsTable)
	cartStore := cart.NewStore(clients.DynamoDB, cfg.CartsTable, catalogStore)
	orderStore := orders.NewStore(clients.DynamoDB, cfg.OrdersTable)

	var publisher orders.EventPublisher
	if cfg.OrderQueueURL != "" {
		publisher = aws.NewPublisher(clients.SQS, cfg.OrderQueueURL)
	}
	orderService := orders.NewService(orderStore, ledger, catalogStore, publisher, logger)

	hcfg := handlers.HandlerConfig{
		Catalog:   catalogStore,
		Users:     users.NewStore(clients.DynamoDB, cfg.UsersTable),
		Carts:     cartStore,
		Orders:    orderService,
		Validator: validation.New(),
		Logger:    logger,
	}
	if cfg.IdempotencyTable != "" {
		hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, idempotencyTTL)
	}
	if cfg.MediaBucket != "" {
		hcfg.Media = media.NewS3Storage(clients.S3, cfg.MediaBucket, cfg.MediaBaseURL)
	}

	r := setupRouter(logger, hcfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
