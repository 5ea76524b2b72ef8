package blogfront

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloList = `[{"id":1,"title":"Hello","slug":"hello","excerpt":"Hi","published":true,"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-02T10:00:00Z"}]`

const helloPost = `{"id":1,"title":"Hello","slug":"hello","content":"Some **bold** text","published":true,"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z","photos":[{"id":1,"post_id":1,"filename":"wide.png","caption":"Wide","display_order":0,"created_at":"2024-01-01T00:00:00Z"}]}`

// fakeBackend serves the blog API. listBody replaces the post list;
// listStatus, when set, fails the list endpoint.
type fakeBackend struct {
	listBody   string
	listStatus int
	calls      atomic.Int64
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	switch {
	case r.URL.Path == "/api/posts":
		if f.listStatus != 0 {
			w.WriteHeader(f.listStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, f.listBody)
	case r.URL.Path == "/api/posts/hello":
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, helloPost)
	case r.URL.Path == "/photos/wide.png":
		w.Header().Set("Content-Type", "image/png")
		w.Write(testPNG(1600, 400))
	case r.URL.Path == "/photos/a%20b.png":
		w.Header().Set("Content-Type", "image/png")
		w.Write(testPNG(10, 10))
	case r.URL.Path == "/photos/junk.jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		io.WriteString(w, "not an image")
	default:
		http.NotFound(w, r)
	}
}

func testPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func newTestApp(t *testing.T, backend *fakeBackend, mutate ...func(*SiteConfig)) *App {
	t.Helper()

	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	cfg := SiteConfig{
		Name:        "Test Blog",
		URL:         "http://example.com",
		Description: "A test blog",
		API:         APIConfig{BaseURL: ts.URL},
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(cfg, DefaultViews(cfg), WithLogger(logger), WithVersion("test"))
	t.Cleanup(func() { a.Close() })
	return a
}

type requestOpt func(*http.Request)

func htmx(r *http.Request) { r.Header.Set("HX-Request", "true") }

func do(a *App, target string, opts ...requestOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestBlogPageMountsLoading(t *testing.T) {
	backend := &fakeBackend{listBody: helloList}
	a := newTestApp(t, backend)

	rec := do(a, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "Loading posts...")
	assert.Contains(t, body, `data-load="/?partial=data"`)
	assert.Contains(t, body, `src="/public/nav.js"`)
	assert.NotContains(t, body, "Hello", "page data is never in the initial document")
	assert.Zero(t, backend.calls.Load())
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestBlogDataFragment(t *testing.T) {
	a := newTestApp(t, &fakeBackend{listBody: helloList})

	rec := do(a, "/?partial=data", htmx)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "<h2>Hello</h2>")
	assert.Contains(t, body, "January 1, 2024")
	assert.Contains(t, body, `href="/posts/hello"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestBlogDataFragmentEmpty(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		a := newTestApp(t, &fakeBackend{listBody: body})

		rec := do(a, "/?partial=data", htmx)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No posts yet. Check back soon!")
	}
}

func TestBlogDataFragmentBackendFailure(t *testing.T) {
	a := newTestApp(t, &fakeBackend{listStatus: http.StatusInternalServerError})

	rec := do(a, "/?partial=data", htmx)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: Failed to fetch posts")
	assert.NotContains(t, rec.Body.String(), "No posts yet")
}

func TestPartialRequiresHXHeader(t *testing.T) {
	backend := &fakeBackend{listBody: helloList}
	a := newTestApp(t, backend)

	rec := do(a, "/?partial=data")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
	assert.Zero(t, backend.calls.Load())
}

func TestPostPageMountsLoading(t *testing.T) {
	backend := &fakeBackend{}
	a := newTestApp(t, backend)

	rec := do(a, "/posts/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading post...")
	assert.Contains(t, rec.Body.String(), `data-load="/posts/hello?partial=data"`)
	assert.Zero(t, backend.calls.Load())
}

func TestPostDataFragment(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/posts/hello?partial=data", htmx)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Hello</h1>")
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, `src="/photos/wide.png"`)
	assert.Contains(t, body, "Back to Blog")
	assert.Contains(t, body, `"@type":"BlogPosting"`)
}

func TestPostDataFragmentNotFound(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/posts/missing?partial=data", htmx)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: Post not found")
	assert.Contains(t, rec.Body.String(), `<a href="/" data-link>Back to Blog</a>`)
}

func TestPagePartial(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/about?partial=page", htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), "About Me")
	assert.Equal(t, "About%20%7C%20Test%20Blog", rec.Header().Get("X-Page-Title"))
	assert.Contains(t, rec.Header().Values("Vary"), "HX-Request")
}

func TestAboutPage(t *testing.T) {
	a := newTestApp(t, &fakeBackend{}, func(c *SiteConfig) {
		c.About = "I write **Go**."
	})

	rec := do(a, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>About | Test Blog</title>")
	assert.Contains(t, rec.Body.String(), "<strong>Go</strong>")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/about/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/about", rec.Header().Get("Location"))
}

func TestDataFragmentRateLimit(t *testing.T) {
	a := newTestApp(t, &fakeBackend{listBody: helloList}, func(c *SiteConfig) {
		c.Limits = LimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	})

	assert.Equal(t, http.StatusOK, do(a, "/?partial=data", htmx).Code)
	assert.Equal(t, http.StatusOK, do(a, "/?partial=data", htmx).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(a, "/?partial=data", htmx).Code)

	// page shells are not limited
	assert.Equal(t, http.StatusOK, do(a, "/").Code)
}

func TestFeed(t *testing.T) {
	a := newTestApp(t, &fakeBackend{listBody: helloList})

	rec := do(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<title>Test Blog</title>")
	assert.Contains(t, body, "<link>http://example.com/posts/hello</link>")
	assert.Contains(t, body, "<pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>")
	assert.Contains(t, body, "<description>Hi</description>")
}

func TestFeedBackendFailure(t *testing.T) {
	a := newTestApp(t, &fakeBackend{listStatus: http.StatusServiceUnavailable})

	rec := do(a, "/feed.xml")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestSitemap(t *testing.T) {
	a := newTestApp(t, &fakeBackend{listBody: helloList})

	rec := do(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<loc>http://example.com/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/about</loc>")
	assert.Contains(t, body, "<loc>http://example.com/posts/hello</loc>")
	assert.Contains(t, body, "<lastmod>2024-01-02</lastmod>")
}

func TestFeedAndSitemapLinksMatchRouter(t *testing.T) {
	list := `[{"id":1,"title":"Café","slug":"café","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}]`
	a := newTestApp(t, &fakeBackend{listBody: list})

	want := "http://example.com/posts/caf%C3%A9"
	assert.Contains(t, do(a, "/feed.xml").Body.String(), "<link>"+want+"</link>")
	assert.Contains(t, do(a, "/sitemap.xml").Body.String(), "<loc>"+want+"</loc>")
	assert.Contains(t, do(a, "/?partial=data", htmx).Body.String(), `href="/posts/caf%C3%A9"`)

	rec := do(a, "/posts/caf%C3%A9")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<link rel="canonical" href="`+want+`">`)
}

func TestRobots(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: http://example.com/sitemap.xml")
}

func TestPhotoIsDownscaled(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/photos/wide.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	img, err := jpeg.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestPhotoErrors(t *testing.T) {
	backend := &fakeBackend{}
	a := newTestApp(t, backend)

	assert.Equal(t, http.StatusNotFound, do(a, "/photos/missing.jpg").Code)
	assert.Equal(t, http.StatusBadGateway, do(a, "/photos/junk.jpg").Code)

	before := backend.calls.Load()
	assert.Equal(t, http.StatusNotFound, do(a, "/photos/..%2Fsecret").Code)
	assert.Equal(t, before, backend.calls.Load(), "rejected names never reach the backend")
}

func TestPhotoNameDecodedOnce(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/photos/a%2520b.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestValidPhotoName(t *testing.T) {
	for _, name := range []string{"cat.jpg", "IMG_0001.JPG", "a b.png"} {
		assert.True(t, validPhotoName(name), name)
	}
	for _, name := range []string{"", ".", "..", "../x", "a/b.jpg", `a\b.jpg`, "x..y"} {
		assert.False(t, validPhotoName(name), name)
	}
}

func TestResizePhotoKeepsSmallImages(t *testing.T) {
	out, err := resizePhoto(bytes.NewReader(testPNG(300, 100)), 800)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Status     string            `json:"status"`
		SystemInfo map[string]string `json:"system_info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "available", got.Status)
	assert.Equal(t, "test", got.SystemInfo["version"])
}

func TestMetrics(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	do(a, "/about")
	rec := do(a, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blogfront_requests_total")
}

func TestStaticAssets(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	rec := do(a, "/public/nav.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "HX-Request")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestNavScriptDropsStaleResponses(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})

	body := do(a, "/public/nav.js").Body.String()
	assert.Contains(t, body, "controller.abort()")
	assert.Contains(t, body, "gen !== generation")
}

func TestPostFragmentCanceledRequest(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(backend.Close)
	t.Cleanup(func() { close(release) })

	cfg := SiteConfig{URL: "http://example.com", API: APIConfig{BaseURL: backend.URL}}
	a := New(cfg, DefaultViews(cfg), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(func() { a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/posts/slow?partial=data", nil).WithContext(ctx)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		a.Echo.ServeHTTP(rec, req)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fragment request did not return after cancel")
	}
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<article")
}

func TestCustomRoutes(t *testing.T) {
	ts := httptest.NewServer(&fakeBackend{})
	t.Cleanup(ts.Close)

	cfg := SiteConfig{API: APIConfig{BaseURL: ts.URL}}
	a := New(cfg, DefaultViews(cfg), WithCustomRoutes(func(a *App) {
		a.Echo.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	}))
	t.Cleanup(func() { a.Close() })

	rec := do(a, "/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
