// Package catalog combines the debounced search text, the genre filter and
// the debounced max price into one query and keeps the visible results in
// step with the most recently issued request.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/debounce"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

const (
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultPriceDebounce  = 500 * time.Millisecond

	MsgRated      = "Rating saved."
	MsgRateFailed = "Rating failed."
)

type Backend interface {
	Search(ctx context.Context, token string, q models.Query) ([]models.CatalogItem, error)
	Rate(ctx context.Context, token, title string, rating int) (string, error)
}

// Credentials supplies the current credential, empty when signed out.
type Credentials interface {
	Credential() string
}

type Options struct {
	SearchDebounce time.Duration
	PriceDebounce  time.Duration
}

// Engine must be used from the loop only.
type Engine struct {
	loop    *loop.Loop
	backend Backend
	creds   Credentials
	log     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	text  *debounce.Timer[string]
	price *debounce.Timer[float64]
	genre string

	issued  models.Query
	started bool
	seq     uint64
	loading bool
	results []models.CatalogItem
	notice  string

	subs []func()
}

func NewEngine(l *loop.Loop, backend Backend, creds Credentials, clock clockwork.Clock, log logging.Logger, opts Options) *Engine {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.PriceDebounce <= 0 {
		opts.PriceDebounce = DefaultPriceDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := models.DefaultQuery()
	e := &Engine{
		loop:    l,
		backend: backend,
		creds:   creds,
		log:     log.With("component", "catalog"),
		ctx:     ctx,
		cancel:  cancel,
		genre:   q.Genre,
		results: []models.CatalogItem{},
	}
	e.text = debounce.NewTimer(l, clock, opts.SearchDebounce, q.Text, func(string) { e.changed() })
	e.price = debounce.NewTimer(l, clock, opts.PriceDebounce, q.MaxPrice, func(float64) { e.changed() })
	return e
}

// Query is the effective query: stabilised text and price, current genre.
func (e *Engine) Query() models.Query {
	return models.Query{Text: e.text.Value(), Genre: e.genre, MaxPrice: e.price.Value()}
}

// Start issues the initial query.
func (e *Engine) Start() {
	e.started = true
	e.issue()
}

// SetText records a keystroke-level change of the search text.
func (e *Engine) SetText(s string) {
	e.text.Set(s)
}

// SetMaxPrice records a slider-level change; v is clamped to the price range.
func (e *Engine) SetMaxPrice(v float64) {
	e.price.Set(models.ClampPrice(v))
}

// SetGenre applies immediately.
func (e *Engine) SetGenre(g string) error {
	if !models.ValidGenre(g) {
		return fmt.Errorf("unknown genre %q", g)
	}
	e.genre = g
	e.changed()
	return nil
}

func (e *Engine) changed() {
	if !e.started || e.Query() == e.issued {
		return
	}
	e.issue()
}

// Refresh re-issues the current query.
func (e *Engine) Refresh() {
	e.started = true
	e.issue()
}

func (e *Engine) issue() {
	e.seq++
	seq, q, token := e.seq, e.Query(), e.creds.Credential()
	e.issued = q
	e.loading = true
	e.notify()

	e.log.Debug(e.ctx, "search issued", "seq", seq, "q", q.Text, "genre", q.Genre, "price", q.MaxPrice)
	loop.Go(e.loop, e.ctx, func(ctx context.Context) ([]models.CatalogItem, error) {
		return e.backend.Search(ctx, token, q)
	}, func(items []models.CatalogItem, err error) {
		if seq != e.seq {
			e.log.Debug(e.ctx, "stale search response dropped", "seq", seq, "latest", e.seq)
			return
		}
		e.loading = false
		if err != nil {
			e.log.Warn(e.ctx, "search failed", "seq", seq, "err", err)
			// Forget the failed query so that asking for it again retries.
			e.issued = models.Query{}
		} else {
			e.results = items
		}
		e.notify()
	})
}

// Rate submits a rating and refreshes the results when it is accepted. The
// outcome is reported through Notice.
func (e *Engine) Rate(title string, rating int) {
	token := e.creds.Credential()
	loop.Go(e.loop, e.ctx, func(ctx context.Context) (string, error) {
		return e.backend.Rate(ctx, token, title, rating)
	}, func(msg string, err error) {
		if err != nil {
			e.log.Warn(e.ctx, "rate failed", "title", title, "err", err)
			e.notice = api.Message(err, MsgRateFailed)
			e.notify()
			return
		}
		if msg == "" {
			msg = MsgRated
		}
		e.notice = msg
		e.Refresh()
	})
}

func (e *Engine) Results() []models.CatalogItem {
	return e.results
}

// Find returns the visible result with the given isbn.
func (e *Engine) Find(isbn string) (models.CatalogItem, bool) {
	for _, it := range e.results {
		if it.ISBN == isbn {
			return it, true
		}
	}
	return models.CatalogItem{}, false
}

func (e *Engine) Loading() bool {
	return e.loading
}

// Notice is the outcome of the last rating, if any.
func (e *Engine) Notice() string {
	return e.notice
}

func (e *Engine) Subscribe(fn func()) {
	e.subs = append(e.subs, fn)
}

func (e *Engine) notify() {
	for _, fn := range e.subs {
		fn()
	}
}

// Close stops the debounce timers and drops in-flight responses.
func (e *Engine) Close() {
	e.text.Stop()
	e.price.Stop()
	e.cancel()
}
