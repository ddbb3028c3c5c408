package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/shopworks/go-commerce-backend/internal/aws"
	"github.com/shopworks/go-commerce-backend/internal/orders"
	"go.uber.org/zap"
)

// metricNamespace groups the order metrics in CloudWatch.
const metricNamespace = "CommerceBackend/Orders"

// Processor consumes order events and performs the async side of the order
// lifecycle: confirming freshly placed orders and emitting metrics.
type Processor struct {
	cloudwatch aws.CloudWatchAPI
	orderStore *orders.Store
	logger     *zap.Logger
	nowFunc    func() time.Time
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, ordersTable string, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cloudwatch: clients.CloudWatch,
		orderStore: orders.NewStore(clients.DynamoDB, ordersTable),
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Handle receives an SQS batch event and processes each message. An error
// returns the batch to the queue; repeated failures land in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("worker error", zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg workerMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	p.logger.Info("received order event",
		zap.String("type", msg.Type),
		zap.String("order_id", msg.OrderID))

	switch msg.Type {
	case aws.EventOrderCreated:
		if err := p.confirmOrder(ctx, msg.OrderID); err != nil {
			return err
		}
		return p.putMetric(ctx, "OrdersConfirmed")
	case aws.EventOrderCancelled:
		return p.putMetric(ctx, "OrdersCancelled")
	default:
		// unknown event types are dropped, not retried
		p.logger.Warn("unknown order event type", zap.String("type", msg.Type))
		return nil
	}
}

// confirmOrder moves a freshly placed order from Processing to Confirmed.
// The conditional status write tolerates duplicate deliveries: if the order
// already advanced (or was cancelled), the mismatch is swallowed.
func (p *Processor) confirmOrder(ctx context.Context, orderID string) error {
	o, err := p.orderStore.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if o == nil {
		// should never happen; DLQ if it does
		return fmt.Errorf("order not found: %s", orderID)
	}
	if o.Status != orders.StatusProcessing {
		p.logger.Info("order already advanced; skipping confirmation",
			zap.String("order_id", orderID),
			zap.String("status", string(o.Status)))
		return nil
	}

	err = p.orderStore.SetStatus(ctx, orderID, orders.StatusProcessing, orders.StatusConfirmed, "", nil)
	if errors.Is(err, orders.ErrStatusMismatch) {
		p.logger.Info("lost confirmation race; skipping", zap.String("order_id", orderID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("confirm order: %w", err)
	}

	p.logger.Info("order confirmed", zap.String("order_id", orderID))
	return nil
}

// putMetric emits a count-1 data point. Metric failures are logged but do
// not fail the message; the order state change already happened.
func (p *Processor) putMetric(ctx context.Context, name string) error {
	now := p.nowFunc()
	one := 1.0
	_, err := p.cloudwatch.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace: awsString(metricNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil {
		p.logger.Warn("failed to put metric", zap.String("metric", name), zap.Error(err))
	}
	return nil
}

func awsString(s string) *string { return &s }
