package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

type result struct {
	items []models.CatalogItem
	err   error
}

type searchCall struct {
	token string
	q     models.Query
	resp  chan result
}

type rateCall struct {
	title  string
	rating int
}

type fakeBackend struct {
	searches chan searchCall
	rates    chan rateCall
	rateErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{searches: make(chan searchCall, 16), rates: make(chan rateCall, 4)}
}

func (f *fakeBackend) Search(ctx context.Context, token string, q models.Query) ([]models.CatalogItem, error) {
	c := searchCall{token: token, q: q, resp: make(chan result, 1)}
	f.searches <- c
	select {
	case r := <-c.resp:
		return r.items, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeBackend) Rate(_ context.Context, _ string, title string, rating int) (string, error) {
	f.rates <- rateCall{title, rating}
	if f.rateErr != nil {
		return "", f.rateErr
	}
	return "Successfully rated '" + title + "'", nil
}

type creds string

func (c creds) Credential() string { return string(c) }

type fixture struct {
	l       *loop.Loop
	clock   clockwork.Clock
	advance func(time.Duration)
	backend *fakeBackend
	e       *Engine
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	fc := clockwork.NewFakeClock()
	f := &fixture{l: loop.New(), clock: fc, advance: fc.Advance, backend: newFakeBackend()}
	f.e = NewEngine(f.l, f.backend, creds(token), fc, logging.Nop(), Options{
		SearchDebounce: 500 * time.Millisecond,
		PriceDebounce:  500 * time.Millisecond,
	})
	t.Cleanup(f.e.Close)
	return f
}

func (f *fixture) nextSearch(t *testing.T) searchCall {
	t.Helper()
	var c searchCall
	require.Eventually(t, func() bool {
		f.l.Flush()
		select {
		case c = <-f.backend.searches:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	return c
}

func (f *fixture) noSearch(t *testing.T) {
	t.Helper()
	time.Sleep(10 * time.Millisecond)
	f.l.Flush()
	select {
	case c := <-f.backend.searches:
		t.Fatalf("unexpected search %+v", c.q)
	default:
	}
}

func (f *fixture) flushUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		f.l.Flush()
		return cond()
	}, time.Second, time.Millisecond)
}

func books(isbns ...string) []models.CatalogItem {
	out := make([]models.CatalogItem, len(isbns))
	for i, s := range isbns {
		out[i] = models.CatalogItem{ISBN: s, Title: "Book " + s}
	}
	return out
}

func TestStart_IssuesDefaultQuery(t *testing.T) {
	f := newFixture(t, "tok")
	f.e.Start()
	assert.True(t, f.e.Loading())

	c := f.nextSearch(t)
	assert.Equal(t, "tok", c.token)
	assert.Equal(t, models.DefaultQuery(), c.q)

	c.resp <- result{items: books("1", "2")}
	f.flushUntil(t, func() bool { return !f.e.Loading() })
	assert.Equal(t, books("1", "2"), f.e.Results())

	it, ok := f.e.Find("2")
	assert.True(t, ok)
	assert.Equal(t, "Book 2", it.Title)
	_, ok = f.e.Find("9")
	assert.False(t, ok)
}

func TestLatestQueryWins(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	initial := f.nextSearch(t)

	require.NoError(t, f.e.SetGenre("Fiction"))
	a := f.nextSearch(t)
	require.NoError(t, f.e.SetGenre("Mystery"))
	b := f.nextSearch(t)
	assert.Equal(t, "Fiction", a.q.Genre)
	assert.Equal(t, "Mystery", b.q.Genre)

	b.resp <- result{items: books("B")}
	f.flushUntil(t, func() bool { return !f.e.Loading() })
	assert.Equal(t, books("B"), f.e.Results())

	a.resp <- result{items: books("A")}
	initial.resp <- result{items: books("I")}
	time.Sleep(10 * time.Millisecond)
	f.l.Flush()

	assert.Equal(t, books("B"), f.e.Results())
	assert.False(t, f.e.Loading())
}

func TestLoadingStaysWhileLatestOutstanding(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	a := f.nextSearch(t)
	require.NoError(t, f.e.SetGenre("Fantasy"))
	b := f.nextSearch(t)

	a.resp <- result{items: books("A")}
	time.Sleep(10 * time.Millisecond)
	f.l.Flush()
	assert.True(t, f.e.Loading())
	assert.Empty(t, f.e.Results())

	b.resp <- result{items: books("B")}
	f.flushUntil(t, func() bool { return !f.e.Loading() })
}

func TestTextIsDebounced(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	f.nextSearch(t).resp <- result{}

	f.e.SetText("d")
	f.advance(200 * time.Millisecond)
	f.l.Flush()
	f.e.SetText("du")
	f.advance(499 * time.Millisecond)
	f.noSearch(t)
	assert.Equal(t, "", f.e.Query().Text)

	f.advance(time.Millisecond)
	c := f.nextSearch(t)
	assert.Equal(t, "du", c.q.Text)
	f.noSearch(t)
}

func TestUnchangedEffectiveQueryDoesNotRefetch(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	f.nextSearch(t).resp <- result{}

	f.e.SetText("x")
	f.advance(100 * time.Millisecond)
	f.l.Flush()
	f.e.SetText("")
	f.advance(500 * time.Millisecond)
	f.noSearch(t)

	require.NoError(t, f.e.SetGenre(models.GenreAll))
	f.noSearch(t)
}

func TestPriceIsClampedAndDebounced(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	f.nextSearch(t).resp <- result{}

	f.e.SetMaxPrice(2)
	f.advance(500 * time.Millisecond)
	c := f.nextSearch(t)
	assert.Equal(t, float64(models.MinPrice), c.q.MaxPrice)
}

func TestNothingIssuedBeforeStart(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.e.SetGenre("Romance"))
	f.noSearch(t)

	f.e.Start()
	assert.Equal(t, "Romance", f.nextSearch(t).q.Genre)
}

func TestFailureKeepsResults(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	f.nextSearch(t).resp <- result{items: books("1")}
	f.flushUntil(t, func() bool { return !f.e.Loading() })

	f.e.Refresh()
	assert.True(t, f.e.Loading())
	f.nextSearch(t).resp <- result{err: api.ErrUnavailable}
	f.flushUntil(t, func() bool { return !f.e.Loading() })

	assert.Equal(t, books("1"), f.e.Results())
}

func TestFailedQueryCanBeRetried(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	f.nextSearch(t).resp <- result{items: books("1")}
	f.flushUntil(t, func() bool { return !f.e.Loading() })

	f.e.SetText("dune")
	f.advance(500 * time.Millisecond)
	failed := f.nextSearch(t)
	assert.Equal(t, "dune", failed.q.Text)
	failed.resp <- result{err: api.ErrUnavailable}
	f.flushUntil(t, func() bool { return !f.e.Loading() })
	assert.Equal(t, books("1"), f.e.Results())

	f.e.SetText("x")
	f.e.SetText("dune")
	f.advance(500 * time.Millisecond)
	retry := f.nextSearch(t)
	assert.Equal(t, "dune", retry.q.Text)
	retry.resp <- result{items: books("D")}
	f.flushUntil(t, func() bool { return !f.e.Loading() })
	assert.Equal(t, books("D"), f.e.Results())

	f.e.SetText("dune")
	f.advance(500 * time.Millisecond)
	f.noSearch(t)

	f.e.SetText("emma")
	f.advance(500 * time.Millisecond)
	assert.Equal(t, "emma", f.nextSearch(t).q.Text)
}

func TestFailedGenreCanBeRetried(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	f.nextSearch(t).resp <- result{}
	f.flushUntil(t, func() bool { return !f.e.Loading() })

	require.NoError(t, f.e.SetGenre("Mystery"))
	f.nextSearch(t).resp <- result{err: api.ErrUnavailable}
	f.flushUntil(t, func() bool { return !f.e.Loading() })

	require.NoError(t, f.e.SetGenre("Mystery"))
	assert.Equal(t, "Mystery", f.nextSearch(t).q.Genre)
}

func TestSetGenre_Unknown(t *testing.T) {
	f := newFixture(t, "")
	assert.Error(t, f.e.SetGenre("Cookbooks"))
	assert.Equal(t, models.GenreAll, f.e.Query().Genre)
}

func TestRate_SuccessRefreshes(t *testing.T) {
	f := newFixture(t, "tok")
	f.e.Start()
	f.nextSearch(t).resp <- result{items: books("1")}

	f.e.Rate("Book 1", 4)
	assert.Equal(t, rateCall{"Book 1", 4}, <-f.backend.rates)

	c := f.nextSearch(t)
	assert.Equal(t, "Successfully rated 'Book 1'", f.e.Notice())
	c.resp <- result{items: books("1")}
}

func TestRate_FailureShowsServerMessage(t *testing.T) {
	f := newFixture(t, "tok")
	f.backend.rateErr = &api.Error{Status: 403, Msg: "Email not verified. Please verify your email to rate books."}

	f.e.Rate("Book 1", 5)
	<-f.backend.rates
	f.flushUntil(t, func() bool { return f.e.Notice() != "" })

	assert.Equal(t, "Email not verified. Please verify your email to rate books.", f.e.Notice())
	f.noSearch(t)
}

func TestClose_StopsTimersAndDropsResponses(t *testing.T) {
	f := newFixture(t, "")
	f.e.Start()
	c := f.nextSearch(t)

	f.e.SetText("late")
	f.e.Close()
	f.advance(time.Second)
	f.noSearch(t)

	c.resp <- result{items: books("1")}
	time.Sleep(10 * time.Millisecond)
	f.l.Flush()
	assert.Empty(t, f.e.Results())
}
