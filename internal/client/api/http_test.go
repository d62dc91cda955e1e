package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
)

type msg struct {
	Msg string `json:"msg"`
}

func reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func newBackend(t *testing.T, route func(r chi.Router)) *HTTPClient {
	t.Helper()
	r := chi.NewRouter()
	route(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL + "/")
}

func TestLogin(t *testing.T) {
	var got map[string]string
	var auth string
	c := newBackend(t, func(r chi.Router) {
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			require.NoError(t, render.DecodeJSON(r.Body, &got))
			if got["password"] != "abc!23" {
				reply(w, r, http.StatusUnauthorized, msg{"Bad username or password"})
				return
			}
			reply(w, r, http.StatusOK, map[string]string{"access_token": "tok"})
		})
	})

	tok, err := c.Login(context.Background(), "ann", "abc!23")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, map[string]string{"username": "ann", "password": "abc!23"}, got)
	assert.Empty(t, auth)

	_, err = c.Login(context.Background(), "ann", "nope")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Bad username or password", Message(err, "fallback"))
}

func TestLogin_MissingToken(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusOK, map[string]string{})
		})
	})

	_, err := c.Login(context.Background(), "ann", "x")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRegister_ServerMessage(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
			var req RegisterRequest
			require.NoError(t, render.DecodeJSON(r.Body, &req))
			if req.Username == "taken" {
				reply(w, r, http.StatusBadRequest, msg{"Username or email already exists"})
				return
			}
			reply(w, r, http.StatusCreated, msg{"User created successfully"})
		})
	})

	m, err := c.Register(context.Background(), RegisterRequest{Username: "ann", Password: "abc!23", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", m)

	_, err = c.Register(context.Background(), RegisterRequest{Username: "taken"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username or email already exists", apiErr.Msg)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestResetPassword_Body(t *testing.T) {
	var got map[string]string
	c := newBackend(t, func(r chi.Router) {
		r.Post("/reset-password", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, render.DecodeJSON(r.Body, &got))
			reply(w, r, http.StatusOK, msg{"Password reset"})
		})
	})

	m, err := c.ResetPassword(context.Background(), "a@b.c", "123456", "new!pw1")
	require.NoError(t, err)
	assert.Equal(t, "Password reset", m)
	assert.Equal(t, map[string]string{"email": "a@b.c", "otp": "123456", "new_password": "new!pw1"}, got)
}

func TestProfile_SendsBearerAndRequestID(t *testing.T) {
	var auth, reqID string
	c := newBackend(t, func(r chi.Router) {
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			reqID = r.Header.Get(RequestIDHeader)
			reply(w, r, http.StatusOK, map[string]any{
				"username":          "ann",
				"email":             "a@b.c",
				"is_verified":       true,
				"is_admin":          false,
				"profile_photo_url": "https://img/ann.png",
			})
		})
	})

	p, err := c.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.Profile{Username: "ann", Email: "a@b.c", IsVerified: true, PhotoURL: "https://img/ann.png"}, p)
	assert.Equal(t, "Bearer tok", auth)
	assert.Len(t, reqID, 36)
}

func TestProfile_UnauthorizedAndForbidden(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusUnauthorized, msg{"Token has expired"})
		})
		r.Post("/admin/add-book", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusForbidden, msg{"Admins only! Access denied."})
		})
	})

	_, err := c.Profile(context.Background(), "old")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.AddBook(context.Background(), "tok", models.NewBook{ISBN: "1", Title: "T", Author: "A"})
	require.ErrorIs(t, err, ErrForbidden)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Admins only! Access denied.", Message(err, ""))
}

func TestSearch(t *testing.T) {
	var q, genre, price, auth string
	c := newBackend(t, func(r chi.Router) {
		r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
			q = r.URL.Query().Get("q")
			genre = r.URL.Query().Get("genre")
			price = r.URL.Query().Get("price")
			auth = r.Header.Get("Authorization")
			reply(w, r, http.StatusOK, []map[string]any{
				{"isbn": "1", "title": "Dune", "price": 9.99, "average_rating": 4.5, "rating_count": 2, "user_rating": 5},
				{"isbn": "2", "title": "Emma", "price": nil},
			})
		})
	})

	items, err := c.Search(context.Background(), "", models.Query{Text: "du ne", Genre: "Science Fiction", MaxPrice: 12.5})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "du ne", q)
	assert.Equal(t, "Science Fiction", genre)
	assert.Equal(t, "12.5", price)
	assert.Empty(t, auth)

	assert.Equal(t, models.NewPrice(9.99), items[0].Price)
	assert.Equal(t, 5, items[0].UserRating)
	assert.False(t, items[1].Price.Valid)
}

func TestSearch_DefaultGenreAndEmptyList(t *testing.T) {
	var genre string
	c := newBackend(t, func(r chi.Router) {
		r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
			genre = r.URL.Query().Get("genre")
			_, _ = io.WriteString(w, "null")
		})
	})

	items, err := c.Search(context.Background(), "tok", models.Query{MaxPrice: 40})
	require.NoError(t, err)
	assert.Equal(t, "all", genre)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMyRatings_NonListIsMalformed(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/my-ratings", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusOK, msg{"oops"})
		})
	})

	_, err := c.MyRatings(context.Background(), "tok")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRecommend_ErrorField(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/recommend", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("isbn") == "" {
				reply(w, r, http.StatusBadRequest, map[string]string{"error": "Book ISBN is required"})
				return
			}
			reply(w, r, http.StatusOK, []models.CatalogItem{{ISBN: "9"}})
		})
	})

	items, err := c.Recommend(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []models.CatalogItem{{ISBN: "9"}}, items)

	_, err = c.Recommend(context.Background(), "")
	assert.Equal(t, "Book ISBN is required", Message(err, "fallback"))
}

func TestRate_EmptyObjectIsSuccess(t *testing.T) {
	var body map[string]any
	c := newBackend(t, func(r chi.Router) {
		r.Post("/rate", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, render.DecodeJSON(r.Body, &body))
			reply(w, r, http.StatusOK, map[string]any{})
		})
	})

	m, err := c.Rate(context.Background(), "tok", "Dune", 4)
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.Equal(t, map[string]any{"title": "Dune", "rating": float64(4)}, body)
}

func TestOTP(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Post("/send-verification-otp", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusOK, msg{"OTP sent successfully"})
		})
		r.Post("/verify-otp", func(w http.ResponseWriter, r *http.Request) {
			var in map[string]string
			require.NoError(t, render.DecodeJSON(r.Body, &in))
			if in["otp"] != "123456" {
				reply(w, r, http.StatusBadRequest, msg{"Invalid or expired OTP"})
				return
			}
			reply(w, r, http.StatusOK, msg{"Email verified successfully!"})
		})
	})

	m, err := c.SendVerificationOTP(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent successfully", m)

	_, err = c.VerifyOTP(context.Background(), "tok", "000000")
	assert.Equal(t, "Invalid or expired OTP", Message(err, ""))

	m, err = c.VerifyOTP(context.Background(), "tok", "123456")
	require.NoError(t, err)
	assert.Equal(t, "Email verified successfully!", m)
}

func TestUserStats(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/user-stats", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusOK, map[string]int{"total_ratings": 7, "total_books_renewed": 2})
		})
	})

	s, err := c.UserStats(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{TotalRatings: 7, TotalBooksRenewed: 2}, s)
}

func TestUploadProfilePhoto(t *testing.T) {
	var gotName, gotContent string
	var gotLength int64
	var gotEncoding []string
	c := newBackend(t, func(r chi.Router) {
		r.Post("/upload-profile-photo", func(w http.ResponseWriter, r *http.Request) {
			gotLength, gotEncoding = r.ContentLength, r.TransferEncoding
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			b, err := io.ReadAll(f)
			require.NoError(t, err)
			gotName, gotContent = hdr.Filename, string(b)
			reply(w, r, http.StatusOK, map[string]string{"profile_photo_url": "https://img/new.png"})
		})
	})

	var mu sync.Mutex
	var seen []int
	content := strings.Repeat("x", 64<<10)
	u, err := c.UploadProfilePhoto(context.Background(), "tok", "me.png", strings.NewReader(content), func(p int) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img/new.png", u)
	assert.Equal(t, "me.png", gotName)
	assert.Equal(t, content, gotContent)
	assert.Greater(t, gotLength, int64(len(content)), "the upload is sent with its length")
	assert.Empty(t, gotEncoding)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, 0, seen[0])
	assert.Equal(t, 100, seen[len(seen)-1])
	assert.IsNonDecreasing(t, seen)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewHTTPClient(srv.URL)

	_, err := c.Recommend(context.Background(), "1")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestTimeout(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Profile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimit_CancelledWait(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/recommend", func(w http.ResponseWriter, r *http.Request) {
			reply(w, r, http.StatusOK, []models.CatalogItem{})
		})
	})
	WithRateLimit(0.001, 1)(c)

	_, err := c.Recommend(context.Background(), "1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Recommend(ctx, "1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "fb", Message(nil, "fb"))
	assert.Equal(t, "fb", Message(&Error{Status: 500}, "fb"))
	assert.Equal(t, "boom", Message(&Error{Status: 500, Msg: "boom"}, "fb"))
	assert.Equal(t, "backend returned 500", (&Error{Status: 500}).Error())
}
