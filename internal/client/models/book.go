package models

// CatalogItem is one search or recommendation result. Values are snapshots;
// the client never mutates them.
type CatalogItem struct {
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         Price   `json:"price"`
	Genre         string  `json:"genre"`
	Image         string  `json:"image"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
	// UserRating is the signed-in user's own rating, 0 when unrated.
	UserRating int `json:"user_rating"`
}

func (c CatalogItem) Rated() bool {
	return c.UserRating > 0
}

// NewBook is the admin form for adding a book to the catalog.
type NewBook struct {
	ISBN      string   `json:"isbn" validate:"required"`
	Title     string   `json:"title" validate:"required"`
	Author    string   `json:"author" validate:"required"`
	Year      string   `json:"year,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	ImageURL  string   `json:"image_url_m,omitempty" validate:"omitempty,url"`
	Genre     string   `json:"genre,omitempty"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}
