package cli

// watch subscribes the printers. Subscriptions run on the loop.
func (a *App) watch() {
	a.session.Subscribe(a.onSession)
	a.auth.Subscribe(func() { a.announce(&a.seen.authMsg, a.auth.Message()) })
	a.catalog.Subscribe(a.onCatalog)
	a.gate.Subscribe(a.onGate)
	a.recs.Subscribe(a.onRecs)
	a.profile.Subscribe(a.onProfile)
	a.admin.Subscribe(func() { a.announce(&a.seen.adminMsg, a.admin.Message()) })
}

// announce prints msg when it differs from the last one printed for the
// same source.
func (a *App) announce(last *string, msg string) {
	if msg == *last {
		return
	}
	*last = msg
	if msg != "" {
		a.println(msg)
	}
}

// onSession keeps the rest of the client in step with the credential: a new
// credential re-queries the catalog so per-user ratings match, and logging
// out returns to the login screen.
func (a *App) onSession() {
	if cred := a.session.Credential(); cred != a.seen.cred {
		a.seen.cred = cred
		a.seen.user = ""
		if cred == "" {
			a.auth.Reset()
			a.gate.Close()
			a.println("Signed out.")
		}
		if a.started && cred != "" {
			a.catalog.Refresh()
		}
	}

	p := a.session.Profile()
	if p.Username == "" || p.Username == a.seen.user {
		return
	}
	a.seen.user = p.Username
	a.printf("Signed in as %s.\n", p.Username)
	if !p.IsVerified {
		a.println("Your email is not verified yet. Rating a book will ask you to verify it.")
	}
}

func (a *App) onCatalog() {
	loading := a.catalog.Loading()
	if a.seen.catalogLoading && !loading {
		renderBooks(a.out, a.catalog.Results())
	}
	a.seen.catalogLoading = loading
	a.announce(&a.seen.notice, a.catalog.Notice())
}

func (a *App) onGate() {
	open := a.gate.Open()
	switch {
	case open && !a.seen.gateOpen:
		a.println("Please verify your email first. Type 'sendotp' to get a code, then 'otp <code>', or 'close' to cancel.")
	case !open && a.seen.gateOpen:
		a.println("Verification closed.")
	}
	a.seen.gateOpen = open
	a.announce(&a.seen.gateMsg, a.gate.Message())
}

func (a *App) onRecs() {
	loading := a.recs.Loading()
	if a.seen.recsLoading && !loading {
		if items := a.recs.Items(); len(items) == 0 {
			a.printf("No recommendations for %s.\n", a.recs.ISBN())
		} else {
			a.printf("Recommended for %s:\n", a.recs.ISBN())
			renderBooks(a.out, items)
		}
	}
	a.seen.recsLoading = loading
}

func (a *App) onProfile() {
	loading := a.profile.Loading()
	if a.seen.profileLoading && !loading {
		renderProfile(a.out, a.profile.Profile(), a.profile.Stats())
	}
	a.seen.profileLoading = loading

	ratings := a.profile.RatingsLoading()
	if a.seen.ratingsLoading && !ratings {
		if items := a.profile.Ratings(); len(items) == 0 {
			a.println("You have not rated any books yet.")
		} else {
			a.println("Your ratings:")
			renderBooks(a.out, items)
		}
	}
	a.seen.ratingsLoading = ratings

	a.announce(&a.seen.profileMsg, a.profile.Message())

	if !a.profile.Uploading() {
		a.seen.progress = -1
		return
	}
	if pct := a.profile.Progress(); pct != a.seen.progress {
		a.seen.progress = pct
		a.printf("  %d%%\n", pct)
	}
}
