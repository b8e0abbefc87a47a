package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

const basePath = "/products"

type remoteRepo struct{ gw *gateway.Gateway }

// NewRemoteRepository returns a Repository backed by the inventory API.
func NewRemoteRepository(gw *gateway.Gateway) Repository { return &remoteRepo{gw: gw} }

func (r *remoteRepo) Search(ctx context.Context, q browser.Query) (*gateway.Page[Product], error) {
	return gateway.GetPage[Product](ctx, r.gw, basePath, q.Values(), q.Page, q.Size)
}

func (r *remoteRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	if err := r.gw.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *remoteRepo) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	p := &Product{}
	if err := r.gw.Post(ctx, basePath, req, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *remoteRepo) Update(ctx context.Context, id int64, req ProductRequest) (*Product, error) {
	p := &Product{}
	if err := r.gw.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), req, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *remoteRepo) Delete(ctx context.Context, id int64) error {
	return r.gw.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id), nil)
}

// DeleteMany sends the id list as the body of DELETE /products.
func (r *remoteRepo) DeleteMany(ctx context.Context, ids []int64) error {
	return r.gw.Delete(ctx, basePath, ids)
}

func (r *remoteRepo) LowStock(ctx context.Context, threshold int) (*LowStockReport, error) {
	var raw struct {
		Threshold *int      `json:"threshold"`
		Count     *int      `json:"count"`
		Items     []Product `json:"items"`
	}
	q := url.Values{"threshold": {strconv.Itoa(threshold)}}
	if err := r.gw.Get(ctx, "/analytics/low-stock", q, &raw); err != nil {
		return nil, err
	}

	report := &LowStockReport{Threshold: threshold, Count: len(raw.Items), Items: raw.Items}
	if raw.Threshold != nil {
		report.Threshold = *raw.Threshold
	}
	if raw.Count != nil {
		report.Count = *raw.Count
	}
	return report, nil
}

func (r *remoteRepo) ExportURL(format string) string {
	return r.gw.ExportURL(basePath + "/export/" + format)
}
