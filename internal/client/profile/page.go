// Package profile backs the account page: profile details, rating stats,
// the user's rated books and the profile photo upload.
package profile

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

const (
	MsgUploading     = "Uploading..."
	MsgUploaded      = "Profile photo updated successfully!"
	MsgUploadFailed  = "Upload failed."
	MsgLoginRequired = "Please log in to view your profile."
)

var ErrBusy = errors.New("an upload is already in progress")

type Backend interface {
	Profile(ctx context.Context, token string) (models.Profile, error)
	UserStats(ctx context.Context, token string) (models.UserStats, error)
	MyRatings(ctx context.Context, token string) ([]models.CatalogItem, error)
	UploadProfilePhoto(ctx context.Context, token, name string, r io.Reader, progress api.Progress) (string, error)
}

type Session interface {
	Credential() string
	RefreshProfile()
}

// Page must be used from the loop only.
type Page struct {
	loop    *loop.Loop
	backend Backend
	session Session
	log     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	pending int
	profile models.Profile
	stats   models.UserStats

	ratings        []models.CatalogItem
	ratingsLoading bool

	uploading bool
	progress  int
	message   string

	subs []func()
}

func NewPage(l *loop.Loop, backend Backend, session Session, log logging.Logger) *Page {
	ctx, cancel := context.WithCancel(context.Background())
	return &Page{
		loop:    l,
		backend: backend,
		session: session,
		log:     log.With("component", "profile"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Load fetches the profile and the stats concurrently. It does nothing while
// a load is in flight.
func (p *Page) Load() {
	token := p.session.Credential()
	if token == "" {
		p.message = MsgLoginRequired
		p.notify()
		return
	}
	if p.pending > 0 {
		return
	}
	p.pending = 2
	p.notify()

	loop.Go(p.loop, p.ctx, func(ctx context.Context) (models.Profile, error) {
		return p.backend.Profile(ctx, token)
	}, func(pr models.Profile, err error) {
		if err != nil {
			p.log.Warn(p.ctx, "load profile", "err", err)
		} else {
			p.profile = pr
		}
		p.done()
	})
	loop.Go(p.loop, p.ctx, func(ctx context.Context) (models.UserStats, error) {
		return p.backend.UserStats(ctx, token)
	}, func(s models.UserStats, err error) {
		if err != nil {
			p.log.Warn(p.ctx, "load stats", "err", err)
		} else {
			p.stats = s
		}
		p.done()
	})
}

func (p *Page) done() {
	if p.pending > 0 {
		p.pending--
	}
	p.notify()
}

// LoadRatings fetches the books the user rated. Any failure, including a
// response that is not a list, leaves the list empty.
func (p *Page) LoadRatings() {
	token := p.session.Credential()
	p.ratingsLoading = true
	p.notify()

	loop.Go(p.loop, p.ctx, func(ctx context.Context) ([]models.CatalogItem, error) {
		return p.backend.MyRatings(ctx, token)
	}, func(items []models.CatalogItem, err error) {
		p.ratingsLoading = false
		if err != nil {
			if errors.Is(err, api.ErrMalformedResponse) {
				p.log.Error(p.ctx, "ratings response is not a list", "err", err)
			} else {
				p.log.Warn(p.ctx, "load ratings", "err", err)
			}
			items = []models.CatalogItem{}
		}
		p.ratings = items
		p.notify()
	})
}

// UploadPhoto sends the file at path as the new profile photo. Progress is
// reported through Progress while the upload runs.
func (p *Page) UploadPhoto(path string) error {
	if p.uploading {
		return ErrBusy
	}
	f, err := os.Open(path)
	if err != nil {
		p.message = MsgUploadFailed
		p.notify()
		return err
	}

	token := p.session.Credential()
	name := filepath.Base(path)
	p.uploading = true
	p.progress = 0
	p.message = MsgUploading
	p.notify()

	ctx := p.ctx
	report := func(pct int) {
		p.loop.Post(func() {
			if ctx.Err() != nil || !p.uploading {
				return
			}
			p.progress = pct
			p.notify()
		})
	}

	loop.Go(p.loop, p.ctx, func(ctx context.Context) (string, error) {
		defer f.Close()
		return p.backend.UploadProfilePhoto(ctx, token, name, f, report)
	}, func(url string, err error) {
		p.uploading = false
		p.progress = 0
		if err != nil {
			p.log.Warn(p.ctx, "upload photo", "err", err)
			p.message = MsgUploadFailed
			p.notify()
			return
		}
		p.profile.PhotoURL = url
		p.message = MsgUploaded
		p.notify()
		p.session.RefreshProfile()
	})
	return nil
}

// Loading reports that profile or stats are still being fetched.
func (p *Page) Loading() bool {
	return p.pending > 0
}

func (p *Page) Profile() models.Profile {
	return p.profile
}

func (p *Page) Stats() models.UserStats {
	return p.stats
}

func (p *Page) Ratings() []models.CatalogItem {
	return p.ratings
}

func (p *Page) RatingsLoading() bool {
	return p.ratingsLoading
}

func (p *Page) Uploading() bool {
	return p.uploading
}

// Progress is the upload completion in percent.
func (p *Page) Progress() int {
	return p.progress
}

func (p *Page) Message() string {
	return p.message
}

func (p *Page) Subscribe(fn func()) {
	p.subs = append(p.subs, fn)
}

func (p *Page) notify() {
	for _, fn := range p.subs {
		fn()
	}
}

func (p *Page) Close() {
	p.cancel()
}
