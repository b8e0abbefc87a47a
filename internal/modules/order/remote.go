package order

import (
	"context"
	"fmt"
	"net/url"

	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

const basePath = "/orders"

// searchKeys are the filters the orders endpoint understands.
var searchKeys = []string{
	browser.KeyCustomerName,
	browser.KeyMinTotal,
	browser.KeyMaxTotal,
	browser.KeyCreatedAfter,
	browser.KeyCreatedBefore,
}

type remoteRepo struct{ gw *gateway.Gateway }

// NewRemoteRepository returns a Repository backed by the inventory API.
func NewRemoteRepository(gw *gateway.Gateway) Repository { return &remoteRepo{gw: gw} }

func (r *remoteRepo) Search(ctx context.Context, q browser.Query) (*gateway.Page[Order], error) {
	return gateway.GetPage[Order](ctx, r.gw, basePath, searchValues(q), q.Page, q.Size)
}

// searchValues encodes a query the way the orders endpoint expects it:
// sortBy and sortDir rather than a single sort parameter.
func searchValues(q browser.Query) url.Values {
	v := url.Values{}
	v.Set("page", fmt.Sprint(q.Page))
	v.Set("size", fmt.Sprint(q.Size))
	for _, key := range searchKeys {
		if value := q.Filter[key]; value != "" {
			v.Set(key, value)
		}
	}
	if s := q.EffectiveSort(); s != nil && s.Field != "" {
		v.Set("sortBy", s.Field)
		v.Set("sortDir", string(s.Direction))
	}
	return v
}

func (r *remoteRepo) GetByID(ctx context.Context, id int64) (*Order, error) {
	o := &Order{}
	if err := r.gw.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *remoteRepo) Create(ctx context.Context, req Request) (*Order, error) {
	o := &Order{}
	if err := r.gw.Post(ctx, basePath, req, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *remoteRepo) Update(ctx context.Context, id int64, req Request) (*Order, error) {
	o := &Order{}
	if err := r.gw.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), req, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *remoteRepo) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	o := &Order{}
	q := url.Values{"status": {string(status)}}
	if err := r.gw.Patch(ctx, fmt.Sprintf("%s/%d/status", basePath, id), q, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *remoteRepo) Delete(ctx context.Context, id int64) error {
	return r.gw.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id), nil)
}

func (r *remoteRepo) ExportURL(format string) string {
	return r.gw.ExportURL(basePath + "/export/" + format)
}
