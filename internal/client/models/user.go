package models

// Profile is the server-held view of the signed-in user.
type Profile struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
	IsAdmin    bool   `json:"is_admin"`
	PhotoURL   string `json:"profile_photo_url"`
}

// Empty reports whether p holds no user, which is the case whenever the
// session has no credential or the profile was not fetched yet.
func (p Profile) Empty() bool {
	return p == Profile{}
}

type UserStats struct {
	TotalRatings      int `json:"total_ratings"`
	TotalBooksRenewed int `json:"total_books_renewed"`
}
