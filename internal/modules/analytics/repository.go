package analytics

import (
	"context"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

const basePath = "/analytics"

// Repository reads server-side aggregates.
type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
	DailySales(ctx context.Context) ([]DailySales, error)
	ExportURL(format string) string
}

type remoteRepo struct{ gw *gateway.Gateway }

// NewRemoteRepository returns a Repository backed by the inventory API.
func NewRemoteRepository(gw *gateway.Gateway) Repository { return &remoteRepo{gw: gw} }

func (r *remoteRepo) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	if err := r.gw.Get(ctx, basePath+"/summary", nil, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *remoteRepo) DailySales(ctx context.Context) ([]DailySales, error) {
	var days []DailySales
	if err := r.gw.Get(ctx, basePath+"/sales-daily", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *remoteRepo) ExportURL(format string) string {
	return r.gw.ExportURL(basePath + "/export/" + format)
}
