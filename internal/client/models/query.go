package models

import "slices"

// GenreAll disables genre filtering.
const GenreAll = "all"

// Genres lists the selectable genre filters in display order.
var Genres = []string{
	GenreAll,
	"Fiction",
	"Mystery",
	"Science Fiction",
	"Fantasy",
	"Thriller",
	"Romance",
	"Non-Fiction",
	"Biography",
}

// Bounds of the max price filter.
const (
	MinPrice     = 5
	MaxPrice     = 40
	DefaultPrice = MaxPrice
)

// Query is the effective catalog query: stabilised text, genre and max price.
type Query struct {
	Text     string
	Genre    string
	MaxPrice float64
}

func DefaultQuery() Query {
	return Query{Genre: GenreAll, MaxPrice: DefaultPrice}
}

// ValidGenre reports whether g is one of Genres.
func ValidGenre(g string) bool {
	return slices.Contains(Genres, g)
}

// ClampPrice keeps v inside [MinPrice, MaxPrice].
func ClampPrice(v float64) float64 {
	switch {
	case v < MinPrice:
		return MinPrice
	case v > MaxPrice:
		return MaxPrice
	default:
		return v
	}
}
