package catalog

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/stockdesk/internal/apitest"
	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
)

func newTestService(t *testing.T, mount func(r chi.Router)) Service {
	t.Helper()
	r := apitest.NewRouter()
	mount(r)
	gw, _ := apitest.Server(t, r)
	return NewService(NewRemoteRepository(gw), Options{}, apitest.QuietLog())
}

func TestFetch_SendsQueryAndNormalisesEnvelope(t *testing.T) {
	svc := newTestService(t, func(r chi.Router) {
		r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "1", q.Get("page"))
			assert.Equal(t, "2", q.Get("size"))
			assert.Equal(t, "ink", q.Get("q"))
			assert.Equal(t, "-price", q.Get("sort"))
			_, hasCategory := q["category"]
			assert.False(t, hasCategory)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			apitest.Respond(w, http.StatusOK, map[string]any{
				"content":       []map[string]any{{"id": 3, "name": "Ink", "stock": 2, "price": 9.5, "severity": "critical"}},
				"totalElements": 3,
				"totalPages":    2,
			})
		})
	})

	page, err := svc.Fetch(context.Background(), browser.Query{
		Page: 1, Size: 2,
		Filter: browser.FilterSpec{browser.KeyQuery: "ink"},
		Sort:   &browser.SortSpec{Field: "price", Direction: browser.Desc},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, SeverityCritical, page.Items[0].Severity)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
}

func TestCreate_ValidatesBeforeDispatch(t *testing.T) {
	called := false
	svc := newTestService(t, func(r chi.Router) {
		r.Post("/products", func(w http.ResponseWriter, r *http.Request) { called = true })
	})

	cases := map[string]ProductRequest{
		"Name is required":                 {Name: "  ", Stock: 1},
		"Stock cannot be negative":         {Name: "Ink", Stock: -1},
		"Price cannot be negative":         {Name: "Ink", Price: -0.01},
		"Reorder level cannot be negative": {Name: "Ink", ReorderLevel: -3},
	}
	for msg, req := range cases {
		_, err := svc.Create(context.Background(), req)
		ae, ok := apperr.As(err)
		require.True(t, ok, msg)
		assert.Equal(t, apperr.Validation, ae.Kind)
		assert.Equal(t, msg, ae.PublicMsg)
	}
	assert.False(t, called)
}

func TestCreate_OmitsBlankSKU(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(r chi.Router) {
		r.Post("/products", func(w http.ResponseWriter, r *http.Request) {
			apitest.Decode(t, r, &body)
			apitest.Respond(w, http.StatusCreated, map[string]any{"id": 11, "name": "Toner", "sku": "TN-1"})
		})
	})

	p, err := svc.Create(context.Background(), ProductRequest{Name: " Toner ", SKU: "  ", Stock: 4, Price: 12, ReorderLevel: DefaultReorderLevel})
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	_, hasSKU := body["sku"]
	assert.False(t, hasSKU)
	assert.Equal(t, "Toner", body["name"])
	assert.EqualValues(t, 5, body["reorderLevel"])
}

func TestDeleteMany_SendsIDListBody(t *testing.T) {
	var ids []int64
	svc := newTestService(t, func(r chi.Router) {
		r.Delete("/products", func(w http.ResponseWriter, r *http.Request) {
			apitest.Decode(t, r, &ids)
			w.WriteHeader(http.StatusNoContent)
		})
	})

	require.NoError(t, svc.DeleteMany(context.Background(), []int64{4, 8}))
	assert.Equal(t, []int64{4, 8}, ids)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(t, func(r chi.Router) {
		r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		})
	})

	_, err := svc.Get(context.Background(), 99)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.Equal(t, "Product not found", apperr.PublicMessage(err, ""))
}

func TestSnapshot_AcceptsFlatResponse(t *testing.T) {
	svc := newTestService(t, func(r chi.Router) {
		r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "0", r.URL.Query().Get("page"))
			assert.Equal(t, "999", r.URL.Query().Get("size"))
			apitest.Respond(w, http.StatusOK, []map[string]any{{"id": 1, "name": "A"}, {"id": 2, "name": "B"}})
		})
	})

	items, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLowStock_DerivesMissingCount(t *testing.T) {
	svc := newTestService(t, func(r chi.Router) {
		r.Get("/analytics/low-stock", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "5", r.URL.Query().Get("threshold"))
			apitest.Respond(w, http.StatusOK, map[string]any{
				"threshold": 5,
				"items":     []map[string]any{{"id": 1, "name": "A", "stock": 0}, {"id": 2, "name": "B", "stock": 4}},
			})
		})
	})

	report, err := svc.LowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Threshold)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, SeverityUnknown, Severity(report.Items[0].Severity.String()))
}

func TestExportURL(t *testing.T) {
	svc := newTestService(t, func(chi.Router) {})

	link, err := svc.ExportURL("PDF")
	require.NoError(t, err)
	assert.Contains(t, link, "/api/products/export/pdf")

	_, err = svc.ExportURL("docx")
	assert.True(t, apperr.Is(err, apperr.Validation))
}
