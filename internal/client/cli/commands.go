package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/admin"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/auth"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/verify"
)

func commandTable() []command {
	return []command{
		{names: []string{"help", "?"}, help: "show available commands", run: (*App).cmdHelp},

		{names: []string{"login"}, help: "log in", scope: signedOut, input: (*App).loginInput, run: (*App).cmdLogin},
		{names: []string{"signup"}, help: "open the registration form", scope: signedOut, run: (*App).cmdSignup},
		{names: []string{"register"}, help: "create an account", scope: signedOut, input: (*App).registerInput, run: (*App).cmdRegister},
		{names: []string{"forgot"}, help: "e-mail a password reset code", scope: signedOut, input: (*App).forgotInput, run: (*App).cmdForgot},
		{names: []string{"reset"}, help: "set a new password with the e-mailed code", scope: signedOut, input: (*App).resetInput, run: (*App).cmdReset},
		{names: []string{"back"}, help: "return to the previous screen", scope: signedOut, run: (*App).cmdBack},

		{names: []string{"search"}, usage: "[text]", help: "search by title or author", scope: signedIn, run: (*App).cmdSearch},
		{names: []string{"genre"}, usage: "<genre>", args: 1, help: "filter by genre (all, Fiction, Mystery, ...)", scope: signedIn, run: (*App).cmdGenre},
		{names: []string{"price"}, usage: "<max>", args: 1, help: "filter by max price (5-40)", scope: signedIn, run: (*App).cmdPrice},
		{names: []string{"list", "l"}, help: "show the current results", scope: signedIn, run: (*App).cmdList},
		{names: []string{"refresh"}, help: "repeat the current search", scope: signedIn, run: (*App).cmdRefresh},
		{names: []string{"select"}, usage: "<isbn>", args: 1, help: "show recommendations for a book", scope: signedIn, run: (*App).cmdSelect},
		{names: []string{"rate"}, usage: "<isbn> <1-5>", args: 2, help: "rate a book", run: (*App).cmdRate},

		{names: []string{"add"}, usage: "<isbn>", args: 1, help: "add a book to the cart", scope: signedIn, run: (*App).cmdAdd},
		{names: []string{"remove"}, usage: "<isbn>", args: 1, help: "remove a book from the cart", scope: signedIn, run: (*App).cmdRemove},
		{names: []string{"cart"}, help: "show the cart", scope: signedIn, run: (*App).cmdCart},
		{names: []string{"buy"}, usage: "<isbn>", args: 1, help: "show where to buy a book", scope: signedIn, run: (*App).cmdBuy},
		{names: []string{"close"}, help: "close the verification dialog or the cart", run: (*App).cmdClose},

		{names: []string{"sendotp"}, help: "e-mail a verification code", scope: signedIn, run: (*App).cmdSendOTP},
		{names: []string{"otp"}, usage: "<code>", args: 1, help: "submit the verification code", scope: signedIn, run: (*App).cmdOTP},
		{names: []string{"profile"}, help: "show your profile", scope: signedIn, run: (*App).cmdProfile},
		{names: []string{"photo"}, usage: "<path>", args: 1, help: "upload a profile photo", scope: signedIn, run: (*App).cmdPhoto},
		{names: []string{"ratings"}, help: "list the books you rated", scope: signedIn, run: (*App).cmdRatings},
		{names: []string{"addbook"}, help: "add a book to the catalog", scope: signedIn, check: (*App).adminOnly, input: (*App).bookInput, run: (*App).cmdAddBook},
		{names: []string{"logout"}, help: "log out", scope: signedIn, run: (*App).cmdLogout},

		{names: []string{"exit", "quit"}, help: "leave the program", quit: true},
	}
}

func (a *App) cmdHelp(context.Context, []string) {
	a.help()
}

// ask reads the named fields in order; names ending in "password" are read
// without echo.
func (a *App) ask(fields ...string) ([]string, error) {
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		var (
			v   string
			err error
		)
		if strings.HasSuffix(strings.ToLower(f), "password") {
			v, err = GetPassword(a.reader, f, a.out)
		} else {
			v, err = GetSimpleText(a.reader, f, a.out)
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (a *App) report(err error) {
	if err != nil {
		a.println("Error:", err)
	}
}

func (a *App) loginInput([]string) ([]string, error) {
	return a.ask("Username", "Password")
}

func (a *App) cmdLogin(_ context.Context, in []string) {
	a.seen.authMsg = ""
	a.report(a.auth.SubmitLogin(in[0], in[1]))
}

func (a *App) cmdSignup(context.Context, []string) {
	a.report(a.auth.Navigate(auth.NavRegister))
}

func (a *App) registerInput([]string) ([]string, error) {
	return a.ask("Username", "Password", "Email")
}

func (a *App) cmdRegister(_ context.Context, in []string) {
	if a.auth.View() == auth.ViewLogin {
		a.report(a.auth.Navigate(auth.NavRegister))
	}
	a.seen.authMsg = ""
	a.report(a.auth.SubmitRegister(in[0], in[1], in[2]))
}

func (a *App) forgotInput([]string) ([]string, error) {
	return a.ask("Email")
}

func (a *App) cmdForgot(_ context.Context, in []string) {
	if a.auth.View() == auth.ViewLogin {
		a.report(a.auth.Navigate(auth.NavForgot))
	}
	a.seen.authMsg = ""
	a.report(a.auth.SubmitForgot(in[0]))
}

func (a *App) resetInput([]string) ([]string, error) {
	return a.ask("OTP", "New password")
}

func (a *App) cmdReset(_ context.Context, in []string) {
	a.seen.authMsg = ""
	a.report(a.auth.SubmitReset(in[0], in[1]))
}

func (a *App) cmdBack(context.Context, []string) {
	a.report(a.auth.Navigate(auth.NavBack))
}

func (a *App) cmdSearch(_ context.Context, args []string) {
	a.catalog.SetText(strings.Join(args, " "))
}

func (a *App) cmdGenre(_ context.Context, args []string) {
	want := strings.Join(args, " ")
	for _, g := range models.Genres {
		if strings.EqualFold(g, want) {
			a.report(a.catalog.SetGenre(g))
			return
		}
	}
	a.printf("Unknown genre %q. Choose one of: %s\n", want, strings.Join(models.Genres, ", "))
}

func (a *App) cmdPrice(_ context.Context, args []string) {
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		a.printf("Not a price: %q\n", args[0])
		return
	}
	v = models.ClampPrice(v)
	a.catalog.SetMaxPrice(v)
	a.printf("Max price: $%.2f\n", v)
}

func (a *App) cmdList(context.Context, []string) {
	if a.catalog.Loading() {
		a.println("Loading...")
		return
	}
	renderBooks(a.out, a.catalog.Results())
}

func (a *App) cmdRefresh(context.Context, []string) {
	a.catalog.Refresh()
}

func (a *App) cmdSelect(_ context.Context, args []string) {
	a.recs.Request(args[0])
}

// find looks the book up among the visible results, then the recommendations.
func (a *App) find(isbn string) (models.CatalogItem, bool) {
	if it, ok := a.catalog.Find(isbn); ok {
		return it, true
	}
	for _, it := range a.recs.Items() {
		if it.ISBN == isbn {
			return it, true
		}
	}
	return models.CatalogItem{}, false
}

func (a *App) cmdRate(_ context.Context, args []string) {
	rating, err := strconv.Atoi(args[1])
	if err != nil || rating < 1 || rating > 5 {
		a.println("Rating must be a whole number from 1 to 5.")
		return
	}
	it, ok := a.catalog.Find(args[0])
	if !ok && a.session.Authenticated() {
		a.printf("No book with ISBN %s in the current results.\n", args[0])
		return
	}

	outcome := a.gate.Attempt(func() {
		a.seen.notice = ""
		a.catalog.Rate(it.Title, rating)
	})
	if outcome == verify.Rejected {
		a.println(a.gate.Notice())
	}
}

func (a *App) cmdAdd(ctx context.Context, args []string) {
	it, ok := a.find(args[0])
	if !ok {
		a.printf("No book with ISBN %s in the current results or recommendations.\n", args[0])
		return
	}
	a.cart.Add(ctx, it)
	a.printf("Added %q to the cart.\n", it.Title)
	renderCart(a.out, a.cart.Lines(), a.cart.Subtotal())
}

func (a *App) cmdRemove(ctx context.Context, args []string) {
	if !a.cart.Remove(ctx, args[0]) {
		a.printf("ISBN %s is not in the cart.\n", args[0])
		return
	}
	renderCart(a.out, a.cart.Lines(), a.cart.Subtotal())
}

func (a *App) cmdCart(context.Context, []string) {
	a.cart.OpenPanel()
	renderCart(a.out, a.cart.Lines(), a.cart.Subtotal())
}

func (a *App) cmdBuy(_ context.Context, args []string) {
	a.printf("Buy it at %s\n", a.cart.PurchaseURL(args[0]))
}

func (a *App) cmdClose(context.Context, []string) {
	switch {
	case a.gate.Open():
		a.gate.Close()
	case a.cart.PanelOpen():
		a.cart.ClosePanel()
		a.println("Cart closed.")
	default:
		a.println("Nothing to close.")
	}
}

func (a *App) cmdSendOTP(context.Context, []string) {
	err := a.gate.RequestOTP()
	if errors.Is(err, verify.ErrNoModal) {
		a.println("Nothing to verify right now.")
		return
	}
	a.report(err)
}

func (a *App) cmdOTP(_ context.Context, args []string) {
	err := a.gate.SubmitCode(args[0])
	if errors.Is(err, verify.ErrNoModal) {
		a.println("Nothing to verify right now.")
		return
	}
	a.report(err)
}

func (a *App) cmdProfile(context.Context, []string) {
	a.profile.Load()
}

func (a *App) cmdPhoto(_ context.Context, args []string) {
	a.seen.profileMsg = ""
	a.report(a.profile.UploadPhoto(args[0]))
}

func (a *App) cmdRatings(context.Context, []string) {
	a.profile.LoadRatings()
}

func (a *App) adminOnly() error {
	if !a.admin.Visible() {
		return admin.ErrNotAdmin
	}
	return nil
}

func (a *App) bookInput([]string) ([]string, error) {
	return a.ask("ISBN", "Title", "Author", "Year (optional)", "Publisher (optional)",
		"Image URL (optional)", "Genre (optional)", "Price (optional)")
}

func (a *App) cmdAddBook(_ context.Context, in []string) {
	b := models.NewBook{
		ISBN:      in[0],
		Title:     in[1],
		Author:    in[2],
		Year:      in[3],
		Publisher: in[4],
		ImageURL:  in[5],
		Genre:     in[6],
	}
	if in[7] != "" {
		price, err := strconv.ParseFloat(in[7], 64)
		if err != nil {
			a.printf("Not a price: %q\n", in[7])
			return
		}
		b.Price = &price
	}
	a.seen.adminMsg = ""
	a.report(a.admin.Submit(b))
}

func (a *App) cmdLogout(context.Context, []string) {
	a.session.Logout()
}

func items(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
