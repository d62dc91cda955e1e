package cli

import (
	"fmt"
	"io"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/cart"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
)

func price(p models.Price) string {
	if !p.Valid {
		return "n/a"
	}
	return "$" + p.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderBooks(w io.Writer, books []models.CatalogItem) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	for i, b := range books {
		fmt.Fprintf(w, "%2d. %s by %s [%s] %s", i+1, b.Title, b.Author, b.ISBN, price(b.Price))
		if b.Genre != "" {
			fmt.Fprintf(w, ", %s", b.Genre)
		}
		fmt.Fprintf(w, ", %.1f/5 (%d)", b.AverageRating, b.RatingCount)
		if b.Rated() {
			fmt.Fprintf(w, ", you rated %d", b.UserRating)
		}
		fmt.Fprintln(w)
	}
}

func renderCart(w io.Writer, lines []cart.Line, subtotal float64) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	fmt.Fprintf(w, "Cart (%s):\n", items(len(lines)))
	for i, l := range lines {
		fmt.Fprintf(w, "%2d. %s by %s [%s] %s\n", i+1, l.Item.Title, l.Item.Author, l.Item.ISBN, price(l.Item.Price))
	}
	fmt.Fprintf(w, "Subtotal: $%.2f\n", subtotal)
}

func renderProfile(w io.Writer, p models.Profile, s models.UserStats) {
	fmt.Fprintf(w, "Username: %s\n", p.Username)
	fmt.Fprintf(w, "Email:    %s\n", p.Email)
	fmt.Fprintf(w, "Verified: %s\n", yesNo(p.IsVerified))
	if p.IsAdmin {
		fmt.Fprintln(w, "Role:     admin")
	}
	if p.PhotoURL != "" {
		fmt.Fprintf(w, "Photo:    %s\n", p.PhotoURL)
	}
	fmt.Fprintf(w, "Books rated: %d, renewed: %d\n", s.TotalRatings, s.TotalBooksRenewed)
}
