package composer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/catalog"
	"github.com/georgemunganga/stockdesk/internal/modules/order"
)

// Submitter sends a finished draft. order.Service satisfies it.
type Submitter interface {
	Create(ctx context.Context, req order.Request) (*order.Order, error)
	Update(ctx context.Context, id int64, req order.Request) (*order.Order, error)
}

// Line is one row of the draft. A line without a product is kept in the
// draft but never submitted.
type Line struct {
	Key          uuid.UUID
	ProductID    *int64
	ProductName  string
	UnitPrice    float64
	Quantity     int
	StockCeiling int
}

// Composer edits an order draft against a catalog snapshot taken once.
type Composer struct {
	mu       sync.Mutex
	products map[int64]catalog.Product
	submit   Submitter
	log      *logrus.Entry

	// held is what the order being edited already reserves, per product.
	held map[int64]int

	orderID       int64
	customerName  string
	customerEmail string
	status        order.Status
	lines         []Line
}

// New starts a create-mode draft with a single blank line.
func New(products []catalog.Product, submit Submitter, log *logrus.Entry) *Composer {
	c := newComposer(products, submit, log)
	c.lines = []Line{blankLine()}
	return c
}

// NewForEdit seeds a draft from an existing order. Each seeded line may go
// up to the snapshot stock plus what the order already holds.
func NewForEdit(o *order.Order, products []catalog.Product, submit Submitter, log *logrus.Entry) *Composer {
	c := newComposer(products, submit, log)
	c.orderID = o.ID
	c.customerName = o.CustomerName
	c.customerEmail = o.CustomerEmail
	c.status = o.Status
	c.log = c.log.WithField("order_id", o.ID)

	for _, it := range o.Items {
		c.held[it.ProductID] += it.Quantity
	}
	c.lines = make([]Line, 0, len(o.Items))
	for _, it := range o.Items {
		id := it.ProductID
		l := Line{
			Key:          uuid.New(),
			ProductID:    &id,
			ProductName:  it.ProductName,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			StockCeiling: c.held[id],
		}
		if p, ok := c.products[id]; ok {
			l.StockCeiling = p.Stock + c.held[id]
			if l.ProductName == "" {
				l.ProductName = p.Name
			}
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func newComposer(products []catalog.Product, submit Submitter, log *logrus.Entry) *Composer {
	idx := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return &Composer{products: idx, held: make(map[int64]int), submit: submit, log: log}
}

func blankLine() Line {
	return Line{Key: uuid.New(), Quantity: 1}
}

// Editing reports whether the draft updates an existing order.
func (c *Composer) Editing() bool { return c.orderID > 0 }

func (c *Composer) OrderID() int64 { return c.orderID }

// Products returns the snapshot the draft validates against.
func (c *Composer) Products() []catalog.Product {
	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out
}

// ── Lines ───────────────────────────────────────────────────

// SelectProduct points line i at a product from the snapshot and resets
// its quantity to 1. An id missing from the snapshot clears the line. When
// editing, the ceiling counts what the order already holds of the product.
func (c *Composer) SelectProduct(i int, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndex(i); err != nil {
		return err
	}
	l := &c.lines[i]
	p, ok := c.products[productID]
	if !ok {
		l.ProductID = nil
		l.ProductName = ""
		l.UnitPrice = 0
		l.StockCeiling = 0
		l.Quantity = 1
		c.log.WithFields(logrus.Fields{"line": l.Key, "product_id": productID}).Debug("product not in snapshot; line cleared")
		return nil
	}
	id := p.ID
	l.ProductID = &id
	l.ProductName = p.Name
	l.UnitPrice = p.Price
	l.StockCeiling = p.Stock + c.held[id]
	l.Quantity = 1
	return nil
}

// SetQuantity rejects values outside [1, ceiling] without touching the line.
func (c *Composer) SetQuantity(i, q int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndex(i); err != nil {
		return err
	}
	l := &c.lines[i]
	if q < 1 {
		return apperr.ValidationErr("Quantity must be at least 1.", map[string]string{"quantity": "min"})
	}
	if q > l.StockCeiling {
		c.log.WithFields(logrus.Fields{"line": l.Key, "quantity": q, "ceiling": l.StockCeiling}).Debug("quantity over stock rejected")
		return apperr.ValidationErr(
			fmt.Sprintf("Not enough stock available! Only %d left.", l.StockCeiling),
			map[string]string{"quantity": "max"},
		)
	}
	l.Quantity = q
	return nil
}

// ClearLines empties the draft.
func (c *Composer) ClearLines() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// AddLine appends a blank line and returns its index.
func (c *Composer) AddLine() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, blankLine())
	return len(c.lines) - 1
}

// RemoveLine drops line i; later lines shift down by one.
func (c *Composer) RemoveLine(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Lines returns a copy of the draft lines.
func (c *Composer) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the sum of quantity × unit price, computed on every call.
func (c *Composer) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, l := range c.lines {
		sum += float64(l.Quantity) * l.UnitPrice
	}
	return sum
}

func (c *Composer) checkIndex(i int) error {
	if i < 0 || i >= len(c.lines) {
		return apperr.ValidationErr(fmt.Sprintf("Line %d does not exist.", i+1), map[string]string{"line": "range"})
	}
	return nil
}

// ── Header ──────────────────────────────────────────────────

func (c *Composer) SetCustomer(name, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customerName = name
	c.customerEmail = email
}

func (c *Composer) Customer() (name, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customerName, c.customerEmail
}

// SetStatus changes the status sent with an edit. Create-mode drafts
// have no status.
func (c *Composer) SetStatus(s string) error {
	if !c.Editing() {
		return apperr.ValidationErr("Status can only be changed on an existing order.", nil)
	}
	st, err := order.ParseStatus(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
	return nil
}

func (c *Composer) Status() order.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ── Submit ──────────────────────────────────────────────────

// Payload builds the request body. Lines without a product are dropped;
// price and name stay local.
func (c *Composer) Payload() order.Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := order.Request{
		CustomerName:  c.customerName,
		CustomerEmail: c.customerEmail,
		Items:         make([]order.ItemRequest, 0, len(c.lines)),
	}
	if c.Editing() {
		req.Status = c.status
	}
	for _, l := range c.lines {
		if l.ProductID == nil {
			continue
		}
		req.Items = append(req.Items, order.ItemRequest{ProductID: *l.ProductID, Quantity: l.Quantity})
	}
	return req
}

// Submit creates or updates the order. An empty item list still goes to
// the server, which decides whether to accept it.
func (c *Composer) Submit(ctx context.Context) (*order.Order, error) {
	req := c.Payload()
	if len(req.Items) == 0 {
		c.log.Warn("submitting order without items")
	}
	if c.Editing() {
		return c.submit.Update(ctx, c.orderID, req)
	}
	return c.submit.Create(ctx, req)
}
