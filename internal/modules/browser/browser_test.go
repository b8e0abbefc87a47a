package browser

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

type item struct {
	ID   int64
	Name string
}

type fetchReply struct {
	page *gateway.Page[item]
	err  error
}

type fetchCall struct {
	q     Query
	reply chan fetchReply
}

// fakeSource answers immediately through respond, or hands each call to the
// test through calls when that channel is set.
type fakeSource struct {
	mu      sync.Mutex
	calls   chan fetchCall
	respond func(Query) (*gateway.Page[item], error)
	queries []Query

	deleteErr error
	deleted   [][]int64
}

func (s *fakeSource) Fetch(_ context.Context, q Query) (*gateway.Page[item], error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if s.calls != nil {
		c := fetchCall{q: q, reply: make(chan fetchReply)}
		s.calls <- c
		r := <-c.reply
		return r.page, r.err
	}
	if s.respond != nil {
		return s.respond(q)
	}
	return &gateway.Page[item]{TotalPages: 1}, nil
}

func (s *fakeSource) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, []int64{id})
	return s.deleteErr
}

func (s *fakeSource) DeleteMany(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ids)
	return s.deleteErr
}

func (s *fakeSource) fetches() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Query(nil), s.queries...)
}

type recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return Notification{}
	}
	return r.seen[len(r.seen)-1]
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func pageOf(pages int, names ...string) *gateway.Page[item] {
	p := &gateway.Page[item]{TotalElements: int64(len(names)), TotalPages: pages, Shape: gateway.ShapeEnvelope}
	for i, n := range names {
		p.Items = append(p.Items, item{ID: int64(i + 1), Name: n})
	}
	return p
}

func newTestBrowser(src *fakeSource, opts Options) (*Browser[item], *recorder) {
	rec := &recorder{}
	opts.Notifier = rec
	b := New[item](context.Background(), src, opts, quietLog())
	return b, rec
}

// ── Ordering ─────────────────────────────────────────────────────────────────

func TestReload_LateEarlierResponseIsDiscarded(t *testing.T) {
	src := &fakeSource{calls: make(chan fetchCall)}
	b, _ := newTestBrowser(src, Options{})
	ctx := context.Background()

	done1 := make(chan error, 1)
	go func() { done1 <- b.Reload(ctx) }()
	r1 := <-src.calls

	done2 := make(chan error, 1)
	go func() { done2 <- b.Reload(ctx) }()
	r2 := <-src.calls

	r2.reply <- fetchReply{page: pageOf(1, "fresh")}
	require.NoError(t, <-done2)

	r1.reply <- fetchReply{page: pageOf(4, "stale-a", "stale-b")}
	require.NoError(t, <-done1)

	st := b.State()
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "fresh", st.Rows[0].Name)
	assert.Equal(t, 1, st.TotalPages)
	assert.False(t, st.Loading)
}

func TestReload_LateEarlierFailureIsDiscarded(t *testing.T) {
	src := &fakeSource{calls: make(chan fetchCall)}
	b, rec := newTestBrowser(src, Options{})
	ctx := context.Background()

	done1 := make(chan error, 1)
	go func() { done1 <- b.Reload(ctx) }()
	r1 := <-src.calls

	done2 := make(chan error, 1)
	go func() { done2 <- b.Reload(ctx) }()
	r2 := <-src.calls

	r2.reply <- fetchReply{page: pageOf(1, "fresh")}
	require.NoError(t, <-done2)
	r1.reply <- fetchReply{err: apperr.RemoteErr(500, "boom")}
	require.NoError(t, <-done1)

	st := b.State()
	require.Len(t, st.Rows, 1)
	assert.NoError(t, st.Err)
	assert.Empty(t, rec.seen)
}

func TestReload_FailureClearsRowsAndCountTogether(t *testing.T) {
	fail := false
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) {
		if fail {
			return nil, apperr.RemoteErr(503, "Service unavailable")
		}
		return pageOf(2, "a", "b"), nil
	}}
	b, rec := newTestBrowser(src, Options{})
	ctx := context.Background()

	require.NoError(t, b.Reload(ctx))
	require.Len(t, b.State().Rows, 2)

	fail = true
	err := b.Reload(ctx)
	require.Error(t, err)

	st := b.State()
	assert.Nil(t, st.Rows)
	assert.Zero(t, st.TotalElements)
	assert.Equal(t, 2, st.TotalPages)
	assert.Error(t, st.Err)
	assert.Equal(t, Notification{Severity: SeverityError, Message: "Service unavailable"}, rec.last())
}

func TestReload_ClampsPageToLoadedRange(t *testing.T) {
	pages := 5
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) { return pageOf(pages, "x"), nil }}
	b, _ := newTestBrowser(src, Options{})
	ctx := context.Background()

	require.NoError(t, b.Reload(ctx))
	require.NoError(t, b.SetPage(ctx, 4))
	assert.Equal(t, 4, b.State().Page)

	pages = 2
	require.NoError(t, b.Reload(ctx))
	assert.Equal(t, 1, b.State().Page)
}

// ── Paging and sorting ───────────────────────────────────────────────────────

func TestSetPage_Clamps(t *testing.T) {
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) { return pageOf(3, "x"), nil }}
	b, _ := newTestBrowser(src, Options{PageSize: 25})
	ctx := context.Background()
	require.NoError(t, b.Reload(ctx))

	require.NoError(t, b.SetPage(ctx, 10))
	q := src.fetches()
	assert.Equal(t, 2, q[len(q)-1].Page)
	assert.Equal(t, 25, q[len(q)-1].Size)

	require.NoError(t, b.SetPage(ctx, -3))
	q = src.fetches()
	assert.Equal(t, 0, q[len(q)-1].Page)

	require.NoError(t, b.NextPage(ctx))
	require.NoError(t, b.NextPage(ctx))
	require.NoError(t, b.NextPage(ctx))
	assert.Equal(t, 2, b.State().Page)
	require.NoError(t, b.PrevPage(ctx))
	assert.Equal(t, 1, b.State().Page)
}

func TestSetPage_WalksFlatResponse(t *testing.T) {
	all := make([]map[string]any, 25)
	for i := range all {
		all[i] = map[string]any{"id": i + 1}
	}
	raw, err := json.Marshal(all)
	require.NoError(t, err)

	src := &fakeSource{respond: func(q Query) (*gateway.Page[item], error) {
		return gateway.DecodePage[item](raw, q.Page, q.Size)
	}}
	b, _ := newTestBrowser(src, Options{PageSize: 10})
	ctx := context.Background()

	require.NoError(t, b.Reload(ctx))
	st := b.State()
	assert.Equal(t, 3, st.TotalPages)
	assert.Equal(t, int64(25), st.TotalElements)
	require.Len(t, st.Rows, 10)
	assert.Equal(t, int64(1), st.Rows[0].ID)

	require.NoError(t, b.SetPage(ctx, 2))
	st = b.State()
	assert.Equal(t, 2, st.Page)
	require.Len(t, st.Rows, 5)
	assert.Equal(t, int64(21), st.Rows[0].ID)
	assert.Equal(t, int64(25), st.Rows[4].ID)

	require.NoError(t, b.PrevPage(ctx))
	st = b.State()
	require.Len(t, st.Rows, 10)
	assert.Equal(t, int64(11), st.Rows[0].ID)
}

func TestSort_StructuredAndTextOverrideEachOther(t *testing.T) {
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) { return pageOf(3, "x"), nil }}
	b, _ := newTestBrowser(src, Options{})
	ctx := context.Background()

	require.NoError(t, b.Reload(ctx))
	require.NoError(t, b.SetPage(ctx, 2))

	require.NoError(t, b.SetSortText(ctx, "price,desc"))
	q := b.Query()
	assert.Nil(t, q.Sort)
	assert.Equal(t, "price,desc", q.SortParam())
	assert.Equal(t, 0, q.Page)

	require.NoError(t, b.SetSort(ctx, "name", Desc))
	q = b.Query()
	assert.Empty(t, q.SortText)
	assert.Equal(t, "-name", q.SortParam())

	require.NoError(t, b.SetSortText(ctx, "-stock"))
	q = b.Query()
	assert.Nil(t, q.Sort)
	assert.Equal(t, &SortSpec{Field: "stock", Direction: Desc}, q.EffectiveSort())
}

func TestSetPageSize(t *testing.T) {
	src := &fakeSource{}
	b, _ := newTestBrowser(src, Options{})

	err := b.SetPageSize(context.Background(), 0)
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.Empty(t, src.fetches())

	require.NoError(t, b.SetPageSize(context.Background(), 50))
	assert.Equal(t, 50, b.Query().Size)
}

// ── Filters ──────────────────────────────────────────────────────────────────

func TestUpdateFilter_NumericValidation(t *testing.T) {
	b, _ := newTestBrowser(&fakeSource{}, Options{})

	require.NoError(t, b.UpdateFilter(KeyMinPrice, "10.5"))
	err := b.UpdateFilter(KeyMinPrice, "cheap")
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Validation, ae.Kind)
	assert.Contains(t, ae.Fields, KeyMinPrice)
	assert.Equal(t, "10.5", b.Query().Filter[KeyMinPrice])

	assert.True(t, apperr.Is(b.UpdateFilter("colour", "red"), apperr.Validation))
}

func TestUpdateFilter_EmptyValuesAreOmitted(t *testing.T) {
	b, _ := newTestBrowser(&fakeSource{}, Options{})

	require.NoError(t, b.UpdateFilter(KeyCategory, "Paper"))
	require.NoError(t, b.UpdateFilter(KeyMaxStock, "40"))
	require.NoError(t, b.UpdateFilter(KeyCategory, "   "))

	v := b.Query().Values()
	_, hasCategory := v[KeyCategory]
	assert.False(t, hasCategory)
	assert.Equal(t, "40", v.Get(KeyMaxStock))
	assert.Equal(t, "0", v.Get("page"))
	assert.Equal(t, "10", v.Get("size"))
	_, hasSort := v["sort"]
	assert.False(t, hasSort)
}

func TestUpdateFilter_BoundedKeysDoNotReload(t *testing.T) {
	src := &fakeSource{}
	b, _ := newTestBrowser(src, Options{Debounce: 10 * time.Millisecond})

	require.NoError(t, b.UpdateFilter(KeyMinStock, "1"))
	require.NoError(t, b.UpdateFilter(KeyCategory, "Ink"))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, src.fetches())

	require.NoError(t, b.Apply(context.Background()))
	q := src.fetches()
	require.Len(t, q, 1)
	assert.Equal(t, "Ink", q[0].Filter[KeyCategory])
	assert.Equal(t, "1", q[0].Filter[KeyMinStock])
}

func TestUpdateFilter_FreeTextIsDebounced(t *testing.T) {
	src := &fakeSource{}
	b, _ := newTestBrowser(src, Options{Debounce: 30 * time.Millisecond})
	defer b.Close()

	for _, v := range []string{"w", "wi", "wid", "widg"} {
		require.NoError(t, b.UpdateFilter(KeyQuery, v))
	}

	require.Eventually(t, func() bool { return len(src.fetches()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	q := src.fetches()
	require.Len(t, q, 1)
	assert.Equal(t, "widg", q[0].Filter[KeyQuery])
}

func TestClose_CancelsPendingDebounce(t *testing.T) {
	src := &fakeSource{}
	b, _ := newTestBrowser(src, Options{Debounce: 20 * time.Millisecond})

	require.NoError(t, b.UpdateFilter(KeyCustomerName, "Acme"))
	b.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, src.fetches())
}

// ── Deletion and selection ───────────────────────────────────────────────────

func TestBulkDelete_RequiresIDs(t *testing.T) {
	src := &fakeSource{}
	b, _ := newTestBrowser(src, Options{})

	assert.True(t, apperr.Is(b.BulkDelete(context.Background(), nil), apperr.Validation))
	assert.True(t, apperr.Is(b.DeleteOne(context.Background(), 0), apperr.Validation))
	assert.True(t, apperr.Is(b.DeleteSelected(context.Background()), apperr.Validation))
	assert.Empty(t, src.deleted)
	assert.Empty(t, src.fetches())
}

func TestBulkDelete_SuccessClearsSelectionAndReloads(t *testing.T) {
	src := &fakeSource{}
	b, rec := newTestBrowser(src, Options{})
	b.Select(3, 1, 2)
	assert.Equal(t, []int64{1, 2, 3}, b.Selection())

	require.NoError(t, b.DeleteSelected(context.Background()))
	assert.Equal(t, [][]int64{{1, 2, 3}}, src.deleted)
	assert.Empty(t, b.Selection())
	assert.Len(t, src.fetches(), 1)
	assert.Equal(t, SeveritySuccess, rec.last().Severity)
}

func TestDeleteOne_FailureKeepsSelectionButStillReloads(t *testing.T) {
	src := &fakeSource{deleteErr: apperr.RemoteErr(409, "Product is referenced by orders")}
	b, rec := newTestBrowser(src, Options{})
	b.Select(7)

	err := b.DeleteOne(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, []int64{7}, b.Selection())
	assert.Len(t, src.fetches(), 1)

	var notes []Notification
	rec.mu.Lock()
	notes = append(notes, rec.seen...)
	rec.mu.Unlock()
	assert.Contains(t, notes, Notification{Severity: SeverityError, Message: "Product is referenced by orders"})
}

func TestSelection(t *testing.T) {
	b, _ := newTestBrowser(&fakeSource{}, Options{})
	b.Select(5, 9)
	b.Deselect(5)
	assert.Equal(t, []int64{9}, b.Selection())
	b.ClearSelection()
	assert.Empty(t, b.Selection())
}

func TestReload_NilPageIsEmpty(t *testing.T) {
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) { return nil, nil }}
	b, _ := newTestBrowser(src, Options{})
	require.NoError(t, b.Reload(context.Background()))
	assert.Empty(t, b.State().Rows)
	assert.Equal(t, 1, b.State().TotalPages)
}

func TestReload_TransportFailureUsesFallbackMessage(t *testing.T) {
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) {
		return nil, apperr.TransportErr(errors.New("dial tcp: refused"))
	}}
	b, rec := newTestBrowser(src, Options{})
	require.Error(t, b.Reload(context.Background()))
	assert.Equal(t, "Failed to load data.", rec.last().Message)
}

func TestOnCommit_RunsForDebouncedLoads(t *testing.T) {
	var mu sync.Mutex
	commits := 0
	src := &fakeSource{respond: func(Query) (*gateway.Page[item], error) { return pageOf(1, "Widget"), nil }}
	b, _ := newTestBrowser(src, Options{
		Debounce: 10 * time.Millisecond,
		OnCommit: func() { mu.Lock(); commits++; mu.Unlock() },
	})
	defer b.Close()

	require.NoError(t, b.UpdateFilter(KeyQuery, "wid"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return commits == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []item{{ID: 1, Name: "Widget"}}, b.State().Rows)
}
