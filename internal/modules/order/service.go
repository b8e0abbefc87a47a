package order

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

// Service defines order operations. It is also the browser.Source for the
// order list.
type Service interface {
	Fetch(ctx context.Context, q browser.Query) (*gateway.Page[Order], error)

	// Get retrieves a full order with its items.
	Get(ctx context.Context, id int64) (*Order, error)

	Create(ctx context.Context, req Request) (*Order, error)
	Update(ctx context.Context, id int64, req Request) (*Order, error)

	// UpdateStatus advances an order to a new lifecycle status.
	UpdateStatus(ctx context.Context, id int64, status string) (*Order, error)

	Delete(ctx context.Context, id int64) error

	// DeleteMany deletes orders one by one and stops at the first failure.
	DeleteMany(ctx context.Context, ids []int64) error

	ExportURL(format string) (string, error)
}

type service struct {
	repo Repository
	log  *logrus.Entry
}

// NewService creates a new order service.
func NewService(repo Repository, log *logrus.Entry) Service {
	return &service{repo: repo, log: log}
}

func (s *service) Fetch(ctx context.Context, q browser.Query) (*gateway.Page[Order], error) {
	return s.repo.Search(ctx, q)
}

func (s *service) Get(ctx context.Context, id int64) (*Order, error) {
	if id <= 0 {
		return nil, apperr.ValidationErr("Order id must be positive.", map[string]string{"id": "invalid"})
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req Request) (*Order, error) {
	req.Status = ""
	req = normalize(req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	o, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": o.ID, "lines": len(req.Items)}).Info("order created")
	return o, nil
}

func (s *service) Update(ctx context.Context, id int64, req Request) (*Order, error) {
	if id <= 0 {
		return nil, apperr.ValidationErr("Order id must be positive.", map[string]string{"id": "invalid"})
	}
	req = normalize(req)
	if req.Status != "" {
		st, err := ParseStatus(string(req.Status))
		if err != nil {
			return nil, err
		}
		req.Status = st
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	o, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "lines": len(req.Items)}).Info("order updated")
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status string) (*Order, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "status": st}).Info("order status changed")
	return o, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("order_id", id).Info("order deleted")
	return nil
}

func (s *service) DeleteMany(ctx context.Context, ids []int64) error {
	for n, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"deleted":   ids[:n],
				"failed_id": id,
				"skipped":   ids[n+1:],
			}).Warn("bulk delete stopped")
			return partialDelete(err, id, n, len(ids))
		}
	}
	return nil
}

// partialDelete keeps the kind of err and tells the operator how far the
// bulk delete got.
func partialDelete(err error, id int64, done, total int) error {
	out := &apperr.Error{Kind: apperr.Remote, Err: fmt.Errorf("delete order %d: %w", id, err)}
	if ae, ok := apperr.As(err); ok {
		out.Kind = ae.Kind
		out.Status = ae.Status
	}
	msg := strings.TrimRight(apperr.PublicMessage(err, "Delete failed"), ".!")
	out.PublicMsg = fmt.Sprintf("%s. Deleted %d of %d orders before order #%d failed.", msg, done, total, id)
	return out
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

func normalize(req Request) Request {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.Items == nil {
		req.Items = []ItemRequest{}
	}
	return req
}
