// Package recommend holds the single recommendation slot shown for the
// selected catalog item.
package recommend

import (
	"context"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

type Backend interface {
	Recommend(ctx context.Context, isbn string) ([]models.CatalogItem, error)
}

// Panel must be used from the loop only. The last request wins.
type Panel struct {
	loop    *loop.Loop
	backend Backend
	log     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	seq     uint64
	isbn    string
	loading bool
	items   []models.CatalogItem

	subs []func()
}

func NewPanel(l *loop.Loop, backend Backend, log logging.Logger) *Panel {
	ctx, cancel := context.WithCancel(context.Background())
	return &Panel{
		loop:    l,
		backend: backend,
		log:     log.With("component", "recommend"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Request clears the slot and fetches recommendations for isbn.
func (p *Panel) Request(isbn string) {
	p.seq++
	seq := p.seq
	p.isbn = isbn
	p.items = nil
	p.loading = true
	p.notify()

	loop.Go(p.loop, p.ctx, func(ctx context.Context) ([]models.CatalogItem, error) {
		return p.backend.Recommend(ctx, isbn)
	}, func(items []models.CatalogItem, err error) {
		if seq != p.seq {
			return
		}
		p.loading = false
		if err != nil {
			p.log.Warn(p.ctx, "recommend failed", "isbn", isbn, "err", err)
		} else {
			p.items = items
		}
		p.notify()
	})
}

// ISBN is the item the slot belongs to.
func (p *Panel) ISBN() string {
	return p.isbn
}

func (p *Panel) Items() []models.CatalogItem {
	return p.items
}

func (p *Panel) Loading() bool {
	return p.loading
}

func (p *Panel) Subscribe(fn func()) {
	p.subs = append(p.subs, fn)
}

func (p *Panel) notify() {
	for _, fn := range p.subs {
		fn()
	}
}

func (p *Panel) Close() {
	p.cancel()
}
