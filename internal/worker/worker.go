package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mcfbridge/internal/config"
	"mcfbridge/internal/fulfillment"
	syncpkg "mcfbridge/internal/sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderEvent is the shape of messages on the order event topic. Only
// payment-confirmed events trigger a submission.
type OrderEvent struct {
	Type      string                 `json:"type"`
	OrderID   string                 `json:"order_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

const EventOrderPaid = "order.paid"

// Worker consumes order events and runs the periodic sync loop.
type Worker struct {
	config     *config.Config
	logger     *zap.Logger
	reader     *kafka.Reader
	manager    *fulfillment.Manager
	reconciler *syncpkg.Reconciler

	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg *config.Config, logger *zap.Logger, manager *fulfillment.Manager, reconciler *syncpkg.Reconciler) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        cfg.ConsumerGroup,
		Topic:          cfg.OrderEventTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:     cfg,
		logger:     logger,
		reader:     reader,
		manager:    manager,
		reconciler: reconciler,
		done:       make(chan struct{}),
	}
}

func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.syncLoop(ctx)

	w.logger.Info("worker started, listening for order events",
		zap.String("topic", w.config.OrderEventTopic))

	for {
		message, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				close(w.done)
				return
			}
			w.logger.Error("failed to read message", zap.Error(err))
			continue
		}

		var event OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("failed to parse event", zap.Error(err))
			continue
		}

		if err := w.process(ctx, event); err != nil {
			w.logger.Error("failed to process event",
				zap.String("type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}
}

func (w *Worker) process(ctx context.Context, event OrderEvent) error {
	if event.Type != EventOrderPaid {
		w.logger.Debug("ignoring event", zap.String("type", event.Type))
		return nil
	}

	result, err := w.manager.Submit(ctx, event.OrderID)
	if err != nil {
		// A duplicate delivery of the same payment event is expected, not
		// an error worth retrying.
		if errors.Is(err, fulfillment.ErrAlreadySubmitted) {
			w.logger.Info("order already submitted, ignoring duplicate event",
				zap.String("order_id", event.OrderID))
			return nil
		}
		return err
	}

	if result.Skipped {
		w.logger.Info("order skipped",
			zap.String("order_id", event.OrderID),
			zap.String("reason", result.Reason))
	}
	return nil
}

// syncLoop reconciles inventory and refreshes open fulfillments on the
// configured interval.
func (w *Worker) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(w.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.reconciler.Run(ctx); err != nil {
				w.logger.Error("scheduled inventory sync failed", zap.Error(err))
			}
			w.manager.RefreshOpen(ctx)
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	if w.cancel != nil {
		w.cancel()
	}
	w.reader.Close()
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
	}
}
