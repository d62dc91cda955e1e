// Package cart is the local shopping list. It is mirrored to durable storage
// on every change and never sent to the backend; the only outside effect is a
// third-party purchase link per book.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"slices"

	"github.com/google/uuid"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/storage"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

const DefaultPurchaseURLTemplate = "https://www.amazon.com/s?k=%s"

// Line is one entry of the cart. The same book added twice is two lines.
type Line struct {
	ID   string
	Item models.CatalogItem
}

// Engine must be used from the loop only. Snapshot writes happen inline so
// that storage always sees them in mutation order.
type Engine struct {
	store       storage.Store
	log         logging.Logger
	purchaseURL string
	newID       func() string

	lines []Line
	open  bool

	subs []func()
}

func NewEngine(store storage.Store, log logging.Logger, purchaseURLTemplate string) *Engine {
	if purchaseURLTemplate == "" {
		purchaseURLTemplate = DefaultPurchaseURLTemplate
	}
	return &Engine{
		store:       store,
		log:         log.With("component", "cart"),
		purchaseURL: purchaseURLTemplate,
		newID:       uuid.NewString,
	}
}

// Add appends a copy of item, opens the summary panel and persists.
func (e *Engine) Add(ctx context.Context, item models.CatalogItem) Line {
	l := Line{ID: e.newID(), Item: item}
	e.lines = append(e.lines, l)
	e.open = true
	e.persist(ctx)
	e.notify()
	return l
}

// Remove drops the first line holding isbn and persists. It reports whether
// a line was removed.
func (e *Engine) Remove(ctx context.Context, isbn string) bool {
	for i, l := range e.lines {
		if l.Item.ISBN != isbn {
			continue
		}
		e.lines = slices.Delete(e.lines, i, i+1)
		e.persist(ctx)
		e.notify()
		return true
	}
	return false
}

func (e *Engine) persist(ctx context.Context) {
	b, err := json.Marshal(e.Items())
	if err != nil {
		e.log.Error(ctx, "encode cart snapshot", "err", err)
		return
	}
	if err := e.store.Set(ctx, storage.KeyCart, b); err != nil {
		e.log.Error(ctx, "persist cart snapshot", "err", err)
	}
}

// Lines returns a copy of the cart in insertion order.
func (e *Engine) Lines() []Line {
	return append([]Line(nil), e.lines...)
}

func (e *Engine) Items() []models.CatalogItem {
	items := make([]models.CatalogItem, len(e.lines))
	for i, l := range e.lines {
		items[i] = l.Item
	}
	return items
}

func (e *Engine) Len() int {
	return len(e.lines)
}

// Subtotal sums the line prices rounded to cents. Missing or malformed
// prices count as zero.
func (e *Engine) Subtotal() float64 {
	var sum float64
	for _, l := range e.lines {
		sum += l.Item.Price.Amount()
	}
	return math.Round(sum*100) / 100
}

// PurchaseURL is the third-party search link for isbn.
func (e *Engine) PurchaseURL(isbn string) string {
	return fmt.Sprintf(e.purchaseURL, url.QueryEscape(isbn))
}

func (e *Engine) PanelOpen() bool {
	return e.open
}

func (e *Engine) OpenPanel() {
	e.open = true
	e.notify()
}

func (e *Engine) ClosePanel() {
	e.open = false
	e.notify()
}

// CheckResume looks for a cart left by a previous run. When there is a
// non-empty one, prompt is asked once with its size, and a yes restores it
// into the live cart. The stored snapshot stays in place while prompt runs
// and is removed afterwards in every case, so the question never repeats on
// the next start.
func (e *Engine) CheckResume(ctx context.Context, prompt func(n int) bool) (bool, error) {
	b, err := e.store.Get(ctx, storage.KeyCart)
	if err != nil {
		return false, fmt.Errorf("read cart snapshot: %w", err)
	}
	if len(b) == 0 {
		return false, nil
	}

	accept := false
	if items := e.decode(ctx, b); len(items) > 0 {
		accept = prompt(len(items))
	}

	b, err = e.store.Take(ctx, storage.KeyCart)
	if err != nil {
		return false, fmt.Errorf("clear cart snapshot: %w", err)
	}
	if !accept {
		return false, nil
	}
	items := e.decode(ctx, b)
	if len(items) == 0 {
		return false, nil
	}
	for _, it := range items {
		e.lines = append(e.lines, Line{ID: e.newID(), Item: it})
	}
	e.notify()
	return true, nil
}

func (e *Engine) decode(ctx context.Context, b []byte) []models.CatalogItem {
	if len(b) == 0 {
		return nil
	}
	var items []models.CatalogItem
	if err := json.Unmarshal(b, &items); err != nil {
		e.log.Warn(ctx, "discarding unreadable cart snapshot", "err", err)
		return nil
	}
	return items
}

func (e *Engine) Subscribe(fn func()) {
	e.subs = append(e.subs, fn)
}

func (e *Engine) notify() {
	for _, fn := range e.subs {
		fn()
	}
}
