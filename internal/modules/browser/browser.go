// Package browser keeps a paginated, filtered, sorted view of a remote
// collection consistent with the latest query the operator dispatched.
package browser

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Source is the remote collection behind a Browser.
type Source[T any] interface {
	Fetch(ctx context.Context, q Query) (*gateway.Page[T], error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error
}

// Options configures a Browser. Zero values take the defaults.
type Options struct {
	PageSize int
	Debounce time.Duration
	Notifier Notifier
	// OnCommit runs after a response is committed, success or failure. It is
	// how a presenter learns about loads the debounce timer started.
	OnCommit func()
}

// View is a consistent copy of the browser state.
type View[T any] struct {
	Rows          []T
	TotalElements int64
	TotalPages    int
	Page          int
	Size          int
	Filter        FilterSpec
	Sort          *SortSpec
	SortText      string
	Loading       bool
	Err           error
	Selection     []int64
}

// Browser drives one collection. Every reload is tagged with a sequence
// number and only the response to the highest number issued is committed, so
// a slow early request never overwrites a later one.
type Browser[T any] struct {
	mu sync.Mutex

	source   Source[T]
	notify   Notifier
	onCommit func()
	log      *logrus.Entry

	filter     FilterSpec
	sort       *SortSpec
	sortText   string
	page       int
	size       int
	totalPages int
	total      int64
	rows       []T
	loading    bool
	lastErr    error
	selection  map[int64]struct{}

	seq uint64

	debounce time.Duration
	timer    *time.Timer
	timerGen uint64
	bgCtx    context.Context
	closed   bool
}

// New creates a browser. ctx bounds the reloads the debounce timer fires on
// its own; it is usually the command's context.
func New[T any](ctx context.Context, source Source[T], opts Options, log *logrus.Entry) *Browser[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 350 * time.Millisecond
	}
	if opts.Notifier == nil {
		opts.Notifier = discard{}
	}
	return &Browser[T]{
		source:     source,
		notify:     opts.Notifier,
		onCommit:   opts.OnCommit,
		log:        log,
		filter:     FilterSpec{},
		size:       opts.PageSize,
		totalPages: 1,
		selection:  make(map[int64]struct{}),
		debounce:   opts.Debounce,
		bgCtx:      ctx,
	}
}

// ── Query state ──────────────────────────────────────────────────────────────

// UpdateFilter edits one filter key. Free-text keys schedule a debounced
// reload; other keys only change the filter and the caller either reloads right
// away or batches edits and calls Apply. An invalid value changes nothing.
func (b *Browser[T]) UpdateFilter(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.filter.Set(key, value); err != nil {
		return err
	}
	if IsFreeText(key) {
		b.scheduleLocked()
	}
	return nil
}

// ClearFilters drops every filter without reloading.
func (b *Browser[T]) ClearFilters() {
	b.mu.Lock()
	b.filter = FilterSpec{}
	b.mu.Unlock()
}

// Apply commits batched filter edits: back to the first page and reload.
func (b *Browser[T]) Apply(ctx context.Context) error {
	b.mu.Lock()
	b.stopTimerLocked()
	b.page = 0
	b.mu.Unlock()
	return b.Reload(ctx)
}

// SetSort replaces the structured sort and clears any free-text sort. An
// empty field removes sorting.
func (b *Browser[T]) SetSort(ctx context.Context, field string, dir Direction) error {
	field = strings.TrimSpace(field)
	b.mu.Lock()
	if field == "" {
		b.sort = nil
	} else {
		if dir != Desc {
			dir = Asc
		}
		b.sort = &SortSpec{Field: field, Direction: dir}
	}
	b.sortText = ""
	b.page = 0
	b.mu.Unlock()
	return b.Reload(ctx)
}

// SetSortText sets the free-text sort and clears the structured one.
func (b *Browser[T]) SetSortText(ctx context.Context, text string) error {
	b.mu.Lock()
	b.sortText = strings.TrimSpace(text)
	b.sort = nil
	b.page = 0
	b.mu.Unlock()
	return b.Reload(ctx)
}

// SetPage moves to page i, clamped to the known page range.
func (b *Browser[T]) SetPage(ctx context.Context, i int) error {
	b.mu.Lock()
	b.page = clamp(i, b.totalPages)
	b.mu.Unlock()
	return b.Reload(ctx)
}

func (b *Browser[T]) NextPage(ctx context.Context) error {
	b.mu.Lock()
	next := b.page + 1
	b.mu.Unlock()
	return b.SetPage(ctx, next)
}

func (b *Browser[T]) PrevPage(ctx context.Context) error {
	b.mu.Lock()
	prev := b.page - 1
	b.mu.Unlock()
	return b.SetPage(ctx, prev)
}

// SetPageSize changes the page size and returns to the first page.
func (b *Browser[T]) SetPageSize(ctx context.Context, n int) error {
	if n <= 0 {
		return apperr.ValidationErr("Page size must be positive.", map[string]string{"size": "must be positive"})
	}
	b.mu.Lock()
	b.size = n
	b.page = 0
	b.mu.Unlock()
	return b.Reload(ctx)
}

// ── Loading ──────────────────────────────────────────────────────────────────

// Reload fetches the current query. A response that is no longer the latest
// is dropped and Reload returns nil. On failure rows and count are cleared
// together, the error is reported to the notifier and returned.
func (b *Browser[T]) Reload(ctx context.Context) error {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	q := b.queryLocked()
	b.loading = true
	b.mu.Unlock()

	page, err := b.source.Fetch(ctx, q)
	if err == nil && page == nil {
		page = &gateway.Page[T]{TotalPages: 1}
	}

	b.mu.Lock()
	if seq != b.seq {
		latest := b.seq
		b.mu.Unlock()
		b.log.WithFields(logrus.Fields{"seq": seq, "latest": latest}).Debug("discarding stale response")
		return nil
	}
	b.loading = false
	if err != nil {
		b.rows = nil
		b.total = 0
		b.lastErr = err
		b.mu.Unlock()
		b.log.WithError(err).WithField("seq", seq).Warn("list reload failed")
		b.notify.Notify(Notification{Severity: SeverityError, Message: apperr.PublicMessage(err, "Failed to load data.")})
		b.committed()
		return err
	}
	b.rows = page.Items
	b.total = page.TotalElements
	b.totalPages = page.TotalPages
	if b.totalPages < 1 {
		b.totalPages = 1
	}
	b.page = clamp(b.page, b.totalPages)
	b.lastErr = nil
	b.mu.Unlock()
	b.committed()
	return nil
}

func (b *Browser[T]) committed() {
	if b.onCommit != nil {
		b.onCommit()
	}
}

// State returns a copy of the current state.
func (b *Browser[T]) State() View[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sortCopy *SortSpec
	if b.sort != nil {
		s := *b.sort
		sortCopy = &s
	}
	return View[T]{
		Rows:          append([]T(nil), b.rows...),
		TotalElements: b.total,
		TotalPages:    b.totalPages,
		Page:          b.page,
		Size:          b.size,
		Filter:        b.filter.clone(),
		Sort:          sortCopy,
		SortText:      b.sortText,
		Loading:       b.loading,
		Err:           b.lastErr,
		Selection:     b.selectionLocked(),
	}
}

// Query returns the query the next reload would send.
func (b *Browser[T]) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queryLocked()
}

func (b *Browser[T]) queryLocked() Query {
	var s *SortSpec
	if b.sort != nil {
		c := *b.sort
		s = &c
	}
	return Query{Page: b.page, Size: b.size, Filter: b.filter.clone(), Sort: s, SortText: b.sortText}
}

// ── Deletion ─────────────────────────────────────────────────────────────────

// DeleteOne removes one record and reloads whatever the outcome.
func (b *Browser[T]) DeleteOne(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.ValidationErr("Select a record to delete.", map[string]string{"id": "required"})
	}
	err := b.source.Delete(ctx, id)
	return b.afterDelete(ctx, err, "Deleted successfully.")
}

// BulkDelete removes several records in one call and reloads whatever the
// outcome.
func (b *Browser[T]) BulkDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return apperr.ValidationErr("Select at least one record to delete.", map[string]string{"ids": "required"})
	}
	for _, id := range ids {
		if id <= 0 {
			return apperr.ValidationErr("Record ids must be positive.", map[string]string{"ids": "invalid id"})
		}
	}
	err := b.source.DeleteMany(ctx, ids)
	return b.afterDelete(ctx, err, "Selected records deleted.")
}

// DeleteSelected bulk-deletes the current selection.
func (b *Browser[T]) DeleteSelected(ctx context.Context) error {
	return b.BulkDelete(ctx, b.Selection())
}

func (b *Browser[T]) afterDelete(ctx context.Context, err error, okMsg string) error {
	if err == nil {
		b.ClearSelection()
		b.notify.Notify(Notification{Severity: SeveritySuccess, Message: okMsg})
	} else {
		b.log.WithError(err).Warn("delete failed")
		b.notify.Notify(Notification{Severity: SeverityError, Message: apperr.PublicMessage(err, "Delete failed.")})
	}
	// The list may be stale either way.
	_ = b.Reload(ctx)
	return err
}

// ── Selection ────────────────────────────────────────────────────────────────

func (b *Browser[T]) Select(ids ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.selection[id] = struct{}{}
	}
}

func (b *Browser[T]) Deselect(ids ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		delete(b.selection, id)
	}
}

// Selection returns the selected ids in ascending order.
func (b *Browser[T]) Selection() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectionLocked()
}

func (b *Browser[T]) ClearSelection() {
	b.mu.Lock()
	b.selection = make(map[int64]struct{})
	b.mu.Unlock()
}

func (b *Browser[T]) selectionLocked() []int64 {
	ids := make([]int64, 0, len(b.selection))
	for id := range b.selection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── Debounce ─────────────────────────────────────────────────────────────────

// Close stops a pending debounced reload. The browser is still usable for
// explicit calls afterwards.
func (b *Browser[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.stopTimerLocked()
}

func (b *Browser[T]) scheduleLocked() {
	if b.closed {
		return
	}
	b.stopTimerLocked()
	b.timerGen++
	gen := b.timerGen
	b.timer = time.AfterFunc(b.debounce, func() { b.fireDebounced(gen) })
}

func (b *Browser[T]) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
}

func (b *Browser[T]) fireDebounced(gen uint64) {
	b.mu.Lock()
	// A newer edit or an explicit Apply superseded this timer.
	if b.closed || gen != b.timerGen {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.page = 0
	b.mu.Unlock()

	if err := b.Reload(b.bgCtx); err != nil {
		b.log.WithError(err).Debug("debounced reload failed")
	}
}

func clamp(i, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if i >= totalPages {
		i = totalPages - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
