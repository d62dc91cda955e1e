// Package auth drives the login, registration, forgot-password and
// reset-password screens. It validates input locally, issues the backend
// call, and turns every outcome into either a session login or a message.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

const (
	MsgRegistered = "Registration successful! Please log in."
	MsgSendingOTP = "Sending OTP..."
	MsgResetting  = "Resetting password..."
	MsgUnknown    = "An unknown error occurred."
)

var (
	ErrBusy      = errors.New("a request is already in progress")
	ErrWrongView = errors.New("action not available on this screen")
)

// Backend is the part of the API the auth screens use.
type Backend interface {
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error)
}

// Sessions receives the credential after a successful login.
type Sessions interface {
	Login(token string)
}

type loginForm struct {
	Username string `label:"Username" validate:"required"`
	Password string `label:"Password" validate:"required"`
}

type registerForm struct {
	Username string `label:"Username" validate:"required"`
	Password string `label:"Password" validate:"required,password"`
	Email    string `label:"Email" validate:"required,email"`
}

type forgotForm struct {
	Email string `label:"Email" validate:"required,email"`
}

type resetForm struct {
	Email       string `label:"Email" validate:"required,email"`
	OTP         string `label:"OTP" validate:"required"`
	NewPassword string `label:"New password" validate:"required,password"`
}

// Machine must be used from the loop only.
type Machine struct {
	loop     *loop.Loop
	backend  Backend
	sessions Sessions
	forms    *Validator
	log      logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	view    View
	message string
	busy    bool
	email   string
	// epoch changes on every view change; a response for an older epoch
	// belongs to a screen that is gone and is dropped.
	epoch uint64

	subs []func()
}

func NewMachine(l *loop.Loop, backend Backend, sessions Sessions, forms *Validator, log logging.Logger) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		loop:     l,
		backend:  backend,
		sessions: sessions,
		forms:    forms,
		log:      log.With("component", "auth"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *Machine) View() View {
	return m.view
}

// Message is the text currently shown on the screen, possibly empty.
func (m *Machine) Message() string {
	return m.message
}

// Busy reports an outstanding submission; the submit affordance is disabled.
func (m *Machine) Busy() bool {
	return m.busy
}

// Email is the address remembered from the Forgot screen.
func (m *Machine) Email() string {
	return m.email
}

func (m *Machine) Subscribe(fn func()) {
	m.subs = append(m.subs, fn)
}

func (m *Machine) notify() {
	for _, fn := range m.subs {
		fn()
	}
}

// Navigate follows a user navigation. The message is cleared and any
// outstanding response is dropped.
func (m *Machine) Navigate(n Nav) error {
	to, ok := navigation[m.view][n]
	if !ok {
		return fmt.Errorf("%w: %v", ErrWrongView, m.view)
	}
	m.moveTo(to)
	m.message = ""
	m.notify()
	return nil
}

// Reset returns to a fresh Login screen, as after logout.
func (m *Machine) Reset() {
	m.moveTo(ViewLogin)
	m.message = ""
	m.email = ""
	m.notify()
}

func (m *Machine) moveTo(v View) {
	m.view = v
	m.busy = false
	m.epoch++
}

func (m *Machine) check(v View) error {
	if m.view != v {
		return fmt.Errorf("%w: %v", ErrWrongView, m.view)
	}
	if m.busy {
		return ErrBusy
	}
	return nil
}

// valid reports whether form passes validation, showing the failure otherwise.
func (m *Machine) valid(form any) bool {
	if err := m.forms.Validate(form); err != nil {
		m.message = Message(err)
		m.notify()
		return false
	}
	return true
}

// send runs call and applies the result unless the view changed meanwhile.
func (m *Machine) send(call func(ctx context.Context) (string, error), apply func(string, error)) {
	m.busy = true
	epoch := m.epoch
	m.notify()
	loop.Go(m.loop, m.ctx, call, func(v string, err error) {
		if epoch != m.epoch {
			m.log.Debug(m.ctx, "dropping response for previous screen")
			return
		}
		m.busy = false
		apply(v, err)
		m.notify()
	})
}

func (m *Machine) SubmitLogin(username, password string) error {
	if err := m.check(ViewLogin); err != nil {
		return err
	}
	if !m.valid(loginForm{Username: username, Password: password}) {
		return nil
	}
	m.send(func(ctx context.Context) (string, error) {
		return m.backend.Login(ctx, username, password)
	}, func(token string, err error) {
		if err != nil {
			m.log.Info(m.ctx, "login failed", "err", err)
			m.message = api.Message(err, MsgUnknown)
			return
		}
		m.message = ""
		m.sessions.Login(token)
	})
	return nil
}

func (m *Machine) SubmitRegister(username, password, email string) error {
	if err := m.check(ViewRegister); err != nil {
		return err
	}
	if !m.valid(registerForm{Username: username, Password: password, Email: email}) {
		return nil
	}
	req := api.RegisterRequest{Username: username, Password: password, Email: email}
	m.send(func(ctx context.Context) (string, error) {
		return m.backend.Register(ctx, req)
	}, func(_ string, err error) {
		if err != nil {
			m.message = api.Message(err, MsgUnknown)
			return
		}
		m.moveTo(ViewLogin)
		m.message = MsgRegistered
	})
	return nil
}

func (m *Machine) SubmitForgot(email string) error {
	if err := m.check(ViewForgot); err != nil {
		return err
	}
	if !m.valid(forgotForm{Email: email}) {
		return nil
	}
	m.message = MsgSendingOTP
	m.send(func(ctx context.Context) (string, error) {
		return m.backend.ForgotPassword(ctx, email)
	}, func(msg string, err error) {
		if err != nil {
			m.message = api.Message(err, MsgUnknown)
			return
		}
		m.email = email
		m.moveTo(ViewReset)
		m.message = msg
	})
	return nil
}

// SubmitReset resets the password of the e-mail given on the Forgot screen.
func (m *Machine) SubmitReset(otp, newPassword string) error {
	if err := m.check(ViewReset); err != nil {
		return err
	}
	email := m.email
	if !m.valid(resetForm{Email: email, OTP: otp, NewPassword: newPassword}) {
		return nil
	}
	m.message = MsgResetting
	m.send(func(ctx context.Context) (string, error) {
		return m.backend.ResetPassword(ctx, email, otp, newPassword)
	}, func(msg string, err error) {
		if err != nil {
			m.message = api.Message(err, MsgUnknown)
			return
		}
		m.moveTo(ViewLogin)
		m.message = msg
	})
	return nil
}

// Close drops outstanding responses.
func (m *Machine) Close() {
	m.cancel()
}
