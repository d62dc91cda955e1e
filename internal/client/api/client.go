package api

import (
	"context"
	"io"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Progress receives upload completion in percent, 0 to 100. It is called from
// the transport goroutine.
type Progress func(percent int)

// Client is the set of backend calls the client makes. Methods returning a
// string return the server's confirmation message.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error)

	Profile(ctx context.Context, token string) (models.Profile, error)
	UserStats(ctx context.Context, token string) (models.UserStats, error)
	SendVerificationOTP(ctx context.Context, token string) (string, error)
	VerifyOTP(ctx context.Context, token, otp string) (string, error)

	// Search accepts an empty token; results then carry no user ratings.
	Search(ctx context.Context, token string, q models.Query) ([]models.CatalogItem, error)
	Rate(ctx context.Context, token, title string, rating int) (string, error)
	Recommend(ctx context.Context, isbn string) ([]models.CatalogItem, error)
	MyRatings(ctx context.Context, token string) ([]models.CatalogItem, error)

	// UploadProfilePhoto returns the new photo URL.
	UploadProfilePhoto(ctx context.Context, token, name string, r io.Reader, progress Progress) (string, error)
	AddBook(ctx context.Context, token string, b models.NewBook) (string, error)
}
