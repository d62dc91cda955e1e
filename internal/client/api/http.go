package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxBodySize     = 4 << 20
)

// HTTPClient implements Client over JSON/HTTP against a single base URL.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	tracer  trace.Tracer
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      http.DefaultClient,
		limiter: rate.NewLimiter(rate.Inf, 0),
		tracer:  otel.Tracer("bookshelf/api"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type call struct {
	method      string
	route       string
	query       url.Values
	token       string
	body        io.Reader
	size        int64 // body length when body hides it
	contentType string
}

func jsonCall(method, route, token string, v any) (call, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return call{}, fmt.Errorf("encode %s: %w", route, err)
	}
	return call{method: method, route: route, token: token, body: bytes.NewReader(b), contentType: "application/json"}, nil
}

// errorBody is the error envelope; the backend uses "msg" almost everywhere
// and "error" on /recommend.
type errorBody struct {
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

// do performs one request and returns the raw 2xx body.
func (c *HTTPClient) do(ctx context.Context, cl call) (_ []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "api "+cl.method+" "+cl.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("http.route", cl.route),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, cl.method, cl.route, err)
	}

	u := c.baseURL + cl.route
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, cl.body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", cl.method, cl.route, err)
	}
	if cl.size > 0 {
		req.ContentLength = cl.size
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, cl.method, cl.route, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, cl.route, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.Msg
		if msg == "" {
			msg = eb.Error
		}
		return nil, &Error{Status: resp.StatusCode, Msg: msg}
	}

	return body, nil
}

// message performs cl and extracts the optional "msg" of a 2xx answer.
func (c *HTTPClient) message(ctx context.Context, cl call) (string, error) {
	body, err := c.do(ctx, cl)
	if err != nil {
		return "", err
	}
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return eb.Msg, nil
}

func (c *HTTPClient) decode(ctx context.Context, cl call, out any) error {
	body, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, cl.route, err)
	}
	return nil
}

func (c *HTTPClient) list(ctx context.Context, cl call) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := c.decode(ctx, cl, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	return items, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, route, token string, v any) (string, error) {
	cl, err := jsonCall(http.MethodPost, route, token, v)
	if err != nil {
		return "", err
	}
	return c.message(ctx, cl)
}

func (c *HTTPClient) Register(ctx context.Context, r RegisterRequest) (string, error) {
	return c.postJSON(ctx, "/register", "", r)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	cl, err := jsonCall(http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.decode(ctx, cl, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: /login: no access_token", ErrMalformedResponse)
	}
	return out.AccessToken, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.postJSON(ctx, "/forgot-password", "", map[string]string{"email": email})
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error) {
	return c.postJSON(ctx, "/reset-password", "", map[string]string{
		"email":        email,
		"otp":          otp,
		"new_password": newPassword,
	})
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (models.Profile, error) {
	var p models.Profile
	err := c.decode(ctx, call{method: http.MethodGet, route: "/profile", token: token}, &p)
	return p, err
}

func (c *HTTPClient) UserStats(ctx context.Context, token string) (models.UserStats, error) {
	var s models.UserStats
	err := c.decode(ctx, call{method: http.MethodGet, route: "/user-stats", token: token}, &s)
	return s, err
}

func (c *HTTPClient) SendVerificationOTP(ctx context.Context, token string) (string, error) {
	return c.message(ctx, call{method: http.MethodPost, route: "/send-verification-otp", token: token})
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, token, otp string) (string, error) {
	return c.postJSON(ctx, "/verify-otp", token, map[string]string{"otp": otp})
}

func (c *HTTPClient) Search(ctx context.Context, token string, q models.Query) ([]models.CatalogItem, error) {
	genre := q.Genre
	if genre == "" {
		genre = models.GenreAll
	}
	v := url.Values{}
	v.Set("q", q.Text)
	v.Set("genre", genre)
	v.Set("price", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	return c.list(ctx, call{method: http.MethodGet, route: "/search", query: v, token: token})
}

func (c *HTTPClient) Rate(ctx context.Context, token, title string, rating int) (string, error) {
	return c.postJSON(ctx, "/rate", token, struct {
		Title  string `json:"title"`
		Rating int    `json:"rating"`
	}{title, rating})
}

func (c *HTTPClient) Recommend(ctx context.Context, isbn string) ([]models.CatalogItem, error) {
	v := url.Values{}
	v.Set("isbn", isbn)
	return c.list(ctx, call{method: http.MethodGet, route: "/recommend", query: v})
}

func (c *HTTPClient) MyRatings(ctx context.Context, token string) ([]models.CatalogItem, error) {
	return c.list(ctx, call{method: http.MethodGet, route: "/my-ratings", token: token})
}

func (c *HTTPClient) AddBook(ctx context.Context, token string, b models.NewBook) (string, error) {
	return c.postJSON(ctx, "/admin/add-book", token, b)
}

func (c *HTTPClient) UploadProfilePhoto(ctx context.Context, token, name string, r io.Reader, progress Progress) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	var body io.Reader = &buf
	if progress != nil {
		progress(0)
		body = &progressReader{r: &buf, total: int64(buf.Len()), report: progress}
	}

	var out struct {
		URL string `json:"profile_photo_url"`
	}
	cl := call{
		method:      http.MethodPost,
		route:       "/upload-profile-photo",
		token:       token,
		body:        body,
		size:        int64(buf.Len()),
		contentType: mw.FormDataContentType(),
	}
	if err := c.decode(ctx, cl, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("%w: /upload-profile-photo: no profile_photo_url", ErrMalformedResponse)
	}
	return out.URL, nil
}

// progressReader reports how much of a body of known size has been consumed.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := 100
	if p.total > 0 {
		pct = int(p.read * 100 / p.total)
	}
	if pct > 100 {
		pct = 100
	}
	if pct != p.last {
		p.last = pct
		p.report(pct)
	}
	return n, err
}
