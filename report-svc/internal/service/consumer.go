package service

import (
	"context"
	"encoding/json"
	"time"

	"tabletap/report-svc/internal/domain"

	"github.com/rs/zerolog"
)

type Consumer struct {
	Reader  MessageReader
	Store   SaleRecorder
	Logger  zerolog.Logger
	Backoff time.Duration
}

func NewConsumer(reader MessageReader, store SaleRecorder, logger zerolog.Logger) *Consumer {
	return &Consumer{
		Reader:  reader,
		Store:   store,
		Logger:  logger,
		Backoff: time.Second,
	}
}

// Start consumes until ctx is cancelled. A message is committed only after it
// was recorded or deliberately skipped.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info().Msg("sales consumer started")
	for {
		message, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.Logger.Error().Err(err).Msg("fetch message")
			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		for {
			err := c.ProcessMessage(ctx, message.Value)
			if err == nil {
				break
			}
			c.Logger.Error().Err(err).Int64("offset", message.Offset).Msg("record sale failed, retrying")
			if !c.wait(ctx) {
				return nil
			}
		}

		if err := c.Reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			c.Logger.Error().Err(err).Int64("offset", message.Offset).Msg("commit message")
		}
	}
}

func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.Backoff):
		return true
	}
}

// ProcessMessage returns an error only when the store failed; undecodable and
// irrelevant messages are dropped.
func (c *Consumer) ProcessMessage(ctx context.Context, value []byte) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		c.Logger.Warn().Err(err).Msg("skipping undecodable order event")
		return nil
	}
	if event.Type != domain.EventOrderConfirmed {
		return nil
	}
	if event.OrderID == "" || event.RestaurantID == "" {
		c.Logger.Warn().Str("order_id", event.OrderID).Msg("skipping order event without ids")
		return nil
	}

	counted, err := c.Store.RecordSale(ctx, event)
	if err != nil {
		return err
	}
	c.Logger.Debug().
		Str("order_id", event.OrderID).
		Str("restaurant_id", event.RestaurantID).
		Bool("duplicate", !counted).
		Msg("order event processed")
	return nil
}
