package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// scope says who may run a command.
type scope int

const (
	anyone scope = iota
	signedOut
	signedIn
)

func (s scope) allows(authenticated bool) error {
	switch {
	case s == signedOut && authenticated:
		return errors.New("log out first")
	case s == signedIn && !authenticated:
		return errors.New("log in first")
	}
	return nil
}

// command is one REPL verb. input runs on the REPL goroutine and may read
// more lines (forms); its result replaces the arguments given to run, which
// runs on the loop.
type command struct {
	names []string
	usage string
	help  string
	scope scope
	args  int
	quit  bool

	check func(a *App) error
	input func(a *App, args []string) ([]string, error)
	run   func(a *App, ctx context.Context, args []string)
}

func (a *App) lookup(name string) (command, bool) {
	for _, c := range a.commands {
		for _, n := range c.names {
			if n == name {
				return c, true
			}
		}
	}
	return command{}, false
}

// repl reads lines until the user quits or input ends.
func (a *App) repl(ctx context.Context) {
	for ctx.Err() == nil {
		var prompt string
		if !a.loop.Do(func() {
			a.offerSavedCart(ctx)
			prompt = a.prompt()
		}) {
			return
		}
		fmt.Fprint(a.out, prompt)

		line, err := a.nextLine(ctx)
		if ctx.Err() != nil {
			a.println()
			return
		}
		if line = strings.TrimSpace(line); line != "" {
			if !a.exec(ctx, line) {
				return
			}
		}
		if err != nil {
			a.println()
			return
		}
	}
}

// nextLine waits for a line of input or for ctx to end, whichever comes
// first. A read abandoned on cancellation is left to finish on its own since
// the REPL is shutting down.
func (a *App) nextLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := a.reader.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// exec runs one input line and reports whether the REPL should continue.
func (a *App) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	name, args := strings.ToLower(parts[0]), parts[1:]

	c, ok := a.lookup(name)
	if !ok {
		a.println("Unknown command:", name)
		return true
	}
	if c.quit {
		a.println("Bye!")
		return false
	}
	if len(args) < c.args {
		a.printf("Usage: %s %s\n", c.names[0], c.usage)
		return true
	}

	var denied error
	if !a.loop.Do(func() {
		a.offerSavedCart(ctx)
		denied = a.allowed(c)
	}) {
		return false
	}
	if denied != nil {
		a.printf("%s: %v\n", name, denied)
		return true
	}

	if c.input != nil {
		var err error
		if args, err = c.input(a, args); err != nil {
			a.printf("%s: input aborted: %v\n", name, err)
			return true
		}
	}

	return a.loop.Do(func() { c.run(a, ctx, args) })
}

func (a *App) allowed(c command) error {
	if err := c.scope.allows(a.session.Authenticated()); err != nil {
		return err
	}
	if c.check != nil {
		return c.check(a)
	}
	return nil
}

func (a *App) prompt() string {
	var b strings.Builder
	b.WriteString("bookshelf")
	if !a.session.Authenticated() {
		fmt.Fprintf(&b, " [%s]", a.auth.View())
	} else if p := a.session.Profile(); p.Username != "" {
		fmt.Fprintf(&b, " (%s)", p.Username)
	}
	if a.gate.Open() {
		fmt.Fprintf(&b, " [verify: %s]", a.gate.State())
	}
	if n := a.cart.Len(); n > 0 {
		fmt.Fprintf(&b, " cart:%d", n)
	}
	b.WriteString("> ")
	return b.String()
}

func (a *App) help() {
	authed := a.session.Authenticated()
	a.println("Available commands:")
	for _, c := range a.commands {
		if c.scope.allows(authed) != nil {
			continue
		}
		if c.check != nil && c.check(a) != nil {
			continue
		}
		usage := strings.TrimSpace(c.names[0] + " " + c.usage)
		a.printf("  %-22s %s\n", usage, c.help)
	}
}
