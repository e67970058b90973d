package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// AdminUseCase is the operator read model across all tenants.
type AdminUseCase struct {
	users        ports.UserRepository
	businesses   ports.BusinessRepository
	scores       ports.ScoreRepository
	transactions ports.TransactionRepository
	exporter     ports.ReportExporter
}

func NewAdminUseCase(
	users ports.UserRepository,
	businesses ports.BusinessRepository,
	scores ports.ScoreRepository,
	transactions ports.TransactionRepository,
	exporter ports.ReportExporter,
) *AdminUseCase {
	return &AdminUseCase{
		users:        users,
		businesses:   businesses,
		scores:       scores,
		transactions: transactions,
		exporter:     exporter,
	}
}

func (uc *AdminUseCase) Users(ctx context.Context) ([]domain.User, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (uc *AdminUseCase) Businesses(ctx context.Context) ([]domain.Business, error) {
	businesses, err := uc.businesses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return businesses, nil
}

func (uc *AdminUseCase) Stats(ctx context.Context) (domain.AdminStats, error) {
	users, err := uc.Users(ctx)
	if err != nil {
		return domain.AdminStats{}, err
	}
	businesses, err := uc.Businesses(ctx)
	if err != nil {
		return domain.AdminStats{}, err
	}
	txs, err := uc.transactions.List(ctx)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("list transactions: %w", err)
	}

	stats := domain.AdminStats{
		TotalUsers:        len(users),
		TotalBusinesses:   len(businesses),
		TotalTransactions: len(txs),
	}
	for _, b := range businesses {
		if b.SubscriptionStatus == domain.SubscriptionActive {
			stats.ActiveSubscriptions++
		}
	}
	for _, tx := range txs {
		if tx.PaymentStatus == domain.PaymentPaid {
			stats.PaidTransactions++
		}
	}
	return stats, nil
}

// ExportBusinesses writes every business with its cached score.
func (uc *AdminUseCase) ExportBusinesses(ctx context.Context, w io.Writer) error {
	businesses, err := uc.Businesses(ctx)
	if err != nil {
		return err
	}
	scores, err := uc.scores.List(ctx)
	if err != nil {
		return fmt.Errorf("list scores: %w", err)
	}
	byBusiness := make(map[string]domain.ComplianceScore, len(scores))
	for _, s := range scores {
		byBusiness[s.BusinessID] = s
	}

	rows := make([]domain.BusinessReportRow, 0, len(businesses))
	for _, b := range businesses {
		row := domain.BusinessReportRow{Business: b}
		if s, ok := byBusiness[b.ID]; ok {
			row.Score = &s
		}
		rows = append(rows, row)
	}
	return uc.exporter.WriteBusinessReport(ctx, w, rows)
}
