// Package verify gates actions that need a verified e-mail address. An
// unverified user is diverted into a one-time-code modal; the attempted action
// is dropped and has to be invoked again once verification succeeded.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

const DefaultCloseDelay = 1500 * time.Millisecond

const (
	MsgLoginRequired = "Please log in to rate a book."
	MsgSendingOTP    = "Sending OTP..."
	MsgVerifying     = "Verifying..."
	MsgVerified      = "Email verified successfully!"
	MsgCodeRequired  = "Please enter the code from your email."
	MsgFailed        = "Verification failed."
)

var (
	ErrNoModal = errors.New("verification is not open")
	ErrState   = errors.New("not available in this verification step")
)

// State is the step of the verification modal.
type State int

const (
	StateIdle State = iota
	StateOtpRequested
	StateVerifying
	StateVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOtpRequested:
		return "otp-requested"
	case StateVerifying:
		return "verifying"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome tells what Attempt did with the action.
type Outcome int

const (
	Ran Outcome = iota
	Rejected
	Diverted
)

type Backend interface {
	SendVerificationOTP(ctx context.Context, token string) (string, error)
	VerifyOTP(ctx context.Context, token, otp string) (string, error)
}

type Session interface {
	Authenticated() bool
	Credential() string
	Profile() models.Profile
	MarkVerified()
	RefreshProfile()
}

type modal struct {
	ctx    context.Context
	cancel context.CancelFunc

	state   State
	message string
	sending bool
	timer   clockwork.Timer
}

// Gate must be used from the loop only.
type Gate struct {
	loop       *loop.Loop
	backend    Backend
	session    Session
	clock      clockwork.Clock
	closeDelay time.Duration
	log        logging.Logger

	modal  *modal
	notice string

	subs []func()
}

func NewGate(l *loop.Loop, backend Backend, session Session, clock clockwork.Clock, closeDelay time.Duration, log logging.Logger) *Gate {
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	return &Gate{
		loop:       l,
		backend:    backend,
		session:    session,
		clock:      clock,
		closeDelay: closeDelay,
		log:        log.With("component", "verify"),
	}
}

// Attempt runs action when the user is verified. A signed-out user is
// rejected with a notice; anyone else gets the modal and the action is
// discarded. A profile that has not loaded yet counts as unverified.
func (g *Gate) Attempt(action func()) Outcome {
	if !g.session.Authenticated() {
		g.notice = MsgLoginRequired
		g.notify()
		return Rejected
	}
	g.notice = ""
	if g.session.Profile().IsVerified {
		action()
		return Ran
	}
	g.open()
	return Diverted
}

func (g *Gate) open() {
	if g.modal != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.modal = &modal{ctx: ctx, cancel: cancel, state: StateIdle}
	g.notify()
}

// RequestOTP asks the backend to e-mail a code.
func (g *Gate) RequestOTP() error {
	m := g.modal
	if m == nil {
		return ErrNoModal
	}
	if m.state != StateIdle || m.sending {
		return fmt.Errorf("%w: %v", ErrState, m.state)
	}

	m.sending = true
	m.message = MsgSendingOTP
	g.notify()

	token := g.session.Credential()
	loop.Go(g.loop, m.ctx, func(ctx context.Context) (string, error) {
		return g.backend.SendVerificationOTP(ctx, token)
	}, func(msg string, err error) {
		m.sending = false
		if err != nil {
			g.log.Warn(m.ctx, "send otp failed", "err", err)
			m.message = api.Message(err, MsgFailed)
		} else {
			m.state = StateOtpRequested
			m.message = msg
		}
		g.notify()
	})
	return nil
}

// SubmitCode verifies code. It is accepted once a code was sent; a failed
// attempt is reported as StateFailed and then returns to StateOtpRequested
// for another try.
func (g *Gate) SubmitCode(code string) error {
	m := g.modal
	if m == nil {
		return ErrNoModal
	}
	if m.state != StateOtpRequested {
		return fmt.Errorf("%w: %v", ErrState, m.state)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		m.message = MsgCodeRequired
		g.notify()
		return nil
	}

	m.state = StateVerifying
	m.message = MsgVerifying
	g.notify()

	token := g.session.Credential()
	loop.Go(g.loop, m.ctx, func(ctx context.Context) (string, error) {
		return g.backend.VerifyOTP(ctx, token, code)
	}, func(msg string, err error) {
		if err != nil {
			g.log.Info(m.ctx, "verify otp failed", "err", err)
			m.state = StateFailed
			m.message = api.Message(err, MsgFailed)
			g.notify()
			m.state = StateOtpRequested
			g.notify()
			return
		}
		if msg == "" {
			msg = MsgVerified
		}
		m.state = StateVerified
		m.message = msg
		g.notify()
		g.finishLater(m)
	})
	return nil
}

// finishLater keeps the success message on screen for closeDelay before the
// session is updated and the modal closes.
func (g *Gate) finishLater(m *modal) {
	m.timer = g.clock.AfterFunc(g.closeDelay, func() {
		g.loop.Post(func() {
			if g.modal != m || m.ctx.Err() != nil {
				return
			}
			g.session.MarkVerified()
			g.session.RefreshProfile()
			g.Close()
		})
	})
}

// Close dismisses the modal, dropping outstanding responses and the pending
// close timer.
func (g *Gate) Close() {
	m := g.modal
	if m == nil {
		return
	}
	m.cancel()
	if m.timer != nil {
		m.timer.Stop()
	}
	g.modal = nil
	g.notify()
}

// Open reports whether the modal is shown.
func (g *Gate) Open() bool {
	return g.modal != nil
}

// State is the modal step; StateIdle when the modal is closed.
func (g *Gate) State() State {
	if g.modal == nil {
		return StateIdle
	}
	return g.modal.state
}

func (g *Gate) Message() string {
	if g.modal == nil {
		return ""
	}
	return g.modal.message
}

// Notice is the message for the last rejected attempt.
func (g *Gate) Notice() string {
	return g.notice
}

func (g *Gate) Subscribe(fn func()) {
	g.subs = append(g.subs, fn)
}

func (g *Gate) notify() {
	for _, fn := range g.subs {
		fn()
	}
}
