// Package admin adds books to the catalog. Only admins see it.
package admin

import (
	"context"
	"errors"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/auth"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

const (
	MsgAdded     = "Book added successfully"
	MsgAddFailed = "Could not add the book."
)

var ErrNotAdmin = errors.New("admins only")

type Backend interface {
	AddBook(ctx context.Context, token string, b models.NewBook) (string, error)
}

type Session interface {
	Credential() string
	Profile() models.Profile
}

// Form must be used from the loop only.
type Form struct {
	loop    *loop.Loop
	backend Backend
	session Session
	forms   *auth.Validator
	log     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	busy    bool
	message string

	subs []func()
}

func NewForm(l *loop.Loop, backend Backend, session Session, forms *auth.Validator, log logging.Logger) *Form {
	ctx, cancel := context.WithCancel(context.Background())
	return &Form{
		loop:    l,
		backend: backend,
		session: session,
		forms:   forms,
		log:     log.With("component", "admin"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Visible reports whether the signed-in user may use the form.
func (f *Form) Visible() bool {
	return f.session.Credential() != "" && f.session.Profile().IsAdmin
}

// Submit validates b and posts it.
func (f *Form) Submit(b models.NewBook) error {
	if !f.Visible() {
		return ErrNotAdmin
	}
	if f.busy {
		return auth.ErrBusy
	}
	if err := f.forms.Validate(b); err != nil {
		f.message = auth.Message(err)
		f.notify()
		return nil
	}

	f.busy = true
	f.message = ""
	f.notify()

	token := f.session.Credential()
	loop.Go(f.loop, f.ctx, func(ctx context.Context) (string, error) {
		return f.backend.AddBook(ctx, token, b)
	}, func(msg string, err error) {
		f.busy = false
		switch {
		case err != nil:
			f.log.Warn(f.ctx, "add book failed", "isbn", b.ISBN, "err", err)
			f.message = api.Message(err, MsgAddFailed)
		case msg == "":
			f.message = MsgAdded
		default:
			f.message = msg
		}
		f.notify()
	})
	return nil
}

func (f *Form) Busy() bool {
	return f.busy
}

func (f *Form) Message() string {
	return f.message
}

func (f *Form) Subscribe(fn func()) {
	f.subs = append(f.subs, fn)
}

func (f *Form) notify() {
	for _, fn := range f.subs {
		fn()
	}
}

func (f *Form) Close() {
	f.cancel()
}
