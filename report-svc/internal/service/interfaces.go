package service

import (
	"context"
	"time"

	"tabletap/pkg/authtoken"
	"tabletap/report-svc/internal/domain"
	"tabletap/report-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type SaleRecorder interface {
	RecordSale(ctx context.Context, event domain.OrderEvent) (bool, error)
}

type SalesCache interface {
	SaleRecorder
	DailySales(ctx context.Context, restaurantID string, dates []string) ([]domain.DailySales, error)
	HasAny(ctx context.Context, restaurantID string, dates []string) (bool, error)
	Unverified(ctx context.Context, restaurantID string, dates []string) ([]string, error)
	StoreVerified(ctx context.Context, restaurantID string, day domain.DailySales) error
}

type SalesSource interface {
	DailySales(ctx context.Context, restaurantID string, from, to time.Time) ([]domain.DailySales, error)
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type ReportServiceInterface interface {
	Sales(ctx context.Context, claims *authtoken.Claims, restaurantID string, period domain.Range) (*domain.SalesReport, error)
}

var (
	_ SalesCache             = (*storage.SalesCache)(nil)
	_ SalesSource            = (*storage.SalesRepository)(nil)
	_ MessageReader          = (*kafka.Reader)(nil)
	_ ReportServiceInterface = (*ReportService)(nil)
)
