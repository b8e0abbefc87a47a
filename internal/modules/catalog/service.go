package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/validation"
)

// Service defines catalog operations. It is also the browser.Source for the
// product list.
type Service interface {
	Fetch(ctx context.Context, q browser.Query) (*gateway.Page[Product], error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, req ProductRequest) (*Product, error)
	Update(ctx context.Context, id int64, req ProductRequest) (*Product, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error

	// Snapshot loads the whole catalog in one page for the order composer.
	Snapshot(ctx context.Context) ([]Product, error)

	// LowStock lists products at or below threshold; 0 means the default.
	LowStock(ctx context.Context, threshold int) (*LowStockReport, error)

	ExportURL(format string) (string, error)
}

// Options tunes the service. Zero values take the defaults.
type Options struct {
	SnapshotSize      int
	LowStockThreshold int
}

type service struct {
	repo Repository
	opts Options
	log  *logrus.Entry
}

func NewService(repo Repository, opts Options, log *logrus.Entry) Service {
	if opts.SnapshotSize <= 0 {
		opts.SnapshotSize = 999
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 5
	}
	return &service{repo: repo, opts: opts, log: log}
}

func (s *service) Fetch(ctx context.Context, q browser.Query) (*gateway.Page[Product], error) {
	return s.repo.Search(ctx, q)
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, apperr.ValidationErr("Product id must be positive.", map[string]string{"id": "invalid"})
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	req = normalize(req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "sku": p.SKU}).Info("product created")
	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, req ProductRequest) (*Product, error) {
	if id <= 0 {
		return nil, apperr.ValidationErr("Product id must be positive.", map[string]string{"id": "invalid"})
	}
	req = normalize(req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.log.WithField("product_id", id).Info("product updated")
	return p, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *service) DeleteMany(ctx context.Context, ids []int64) error {
	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		return err
	}
	s.log.WithField("count", len(ids)).Info("products deleted")
	return nil
}

func (s *service) Snapshot(ctx context.Context) ([]Product, error) {
	page, err := s.repo.Search(ctx, browser.Query{Page: 0, Size: s.opts.SnapshotSize})
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	if page.TotalElements > int64(len(page.Items)) {
		s.log.WithFields(logrus.Fields{
			"loaded": len(page.Items),
			"total":  page.TotalElements,
		}).Warn("catalog snapshot is truncated")
	}
	return page.Items, nil
}

func (s *service) LowStock(ctx context.Context, threshold int) (*LowStockReport, error) {
	if threshold <= 0 {
		threshold = s.opts.LowStockThreshold
	}
	return s.repo.LowStock(ctx, threshold)
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

// normalize trims text fields. A blank SKU is dropped from the payload.
func normalize(req ProductRequest) ProductRequest {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Brand = strings.TrimSpace(req.Brand)
	return req
}
