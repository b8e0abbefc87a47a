package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

// Service defines analytics operations.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
	DailySales(ctx context.Context) ([]DailySales, error)

	// Dashboard loads the summary and, best-effort, the daily series.
	// Without daily data the trend falls back to monthly revenue.
	Dashboard(ctx context.Context) (*Dashboard, error)

	ExportURL(format string) (string, error)
}

type service struct {
	repo Repository
	log  *logrus.Entry
}

func NewService(repo Repository, log *logrus.Entry) Service {
	return &service{repo: repo, log: log}
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx)
}

func (s *service) DailySales(ctx context.Context) ([]DailySales, error) {
	return s.repo.DailySales(ctx)
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	d := &Dashboard{Summary: *summary, TrendSource: TrendNone}

	days, err := s.repo.DailySales(ctx)
	if err != nil {
		s.log.WithError(err).Warn("daily sales unavailable; using monthly revenue")
		d.DailyErr = err
	}

	switch {
	case len(days) > 0:
		d.TrendSource = TrendDaily
		for _, day := range days {
			d.Trend = append(d.Trend, Point{Label: day.Day, Value: day.Revenue})
		}
	case len(summary.MonthlyRevenue) > 0:
		d.TrendSource = TrendMonthly
		for _, m := range summary.MonthlyRevenue {
			d.Trend = append(d.Trend, Point{Label: m.Month, Value: m.Revenue})
		}
	}
	return d, nil
}

func (s *service) ExportURL(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, f := range ExportFormats {
		if f == format {
			return s.repo.ExportURL(format), nil
		}
	}
	return "", apperr.ValidationErr(fmt.Sprintf("Export format %q must be csv, excel or pdf.", format), nil)
}
