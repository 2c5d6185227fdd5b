package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/content"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/effect"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/forms"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/site"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/submit"
	"github.com/Fatimaq07/Humans-WInning-AI/web"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorded struct {
	kind    submit.Kind
	payload any
}

type recorder struct {
	mu  sync.Mutex
	got []recorded
	err error
}

func (r *recorder) Submit(_ context.Context, kind submit.Kind, payload any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.got = append(r.got, recorded{kind, payload})
	return "id-1", nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.got...)
}

type fixture struct {
	srv   *Server
	rec   *recorder
	stage *effect.Stage
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	cfg := config.Config{
		SiteTitle: "Humans Winning AI",
		Auth: config.AuthConfig{
			SimulatedDelay:  delay,
			GoogleSignInURL: "https://accounts.google.com/signin/v2/identifier",
		},
		Links: config.LinksConfig{Discord: "https://discord.gg/z5FUGp6NAY"},
	}
	src, err := content.Resolve(web.FS, "")
	require.NoError(t, err)
	st, err := site.New(cfg, src, zap.NewNop())
	require.NoError(t, err)

	f := &fixture{rec: &recorder{}, stage: effect.NewStage(effect.DefaultViewport, effect.WithSeed(1))}
	t.Cleanup(f.stage.Close)
	f.srv = New(Options{Config: cfg, Site: st, Submitter: f.rec, Stage: f.stage, Logger: zap.NewNop()})
	return f
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (f *fixture) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

var (
	h1Re  = regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`)
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

func heading(t *testing.T, html string) string {
	t.Helper()
	m := h1Re.FindStringSubmatch(html)
	require.NotNil(t, m, "page has no h1")
	return strings.Join(strings.Fields(tagRe.ReplaceAllString(m[1], "")), " ")
}

func TestEveryNavigationPathRendersItsPage(t *testing.T) {
	f := newFixture(t, 0)
	want := map[string]string{
		"/":             "Humans Winning AI",
		"/about":        "Who We Are?",
		"/stories":      "Success Stories",
		"/features":     "Platform Features",
		"/publications": "Research Publications",
		"/forums":       "Community Forums",
		"/volunteer":    "Volunteer Corner – Become a Story Ambassador or Event Coordinator!",
		"/auth":         "Humans Winning AI",
	}
	for path, h1 := range want {
		t.Run(path, func(t *testing.T) {
			rec := f.get(t, path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, h1, heading(t, rec.Body.String()))
		})
	}
}

var visibleCardRe = regexp.MustCompile(`<article class="publication-card glass"[^>]*>(?s:.*?)<h3>([^<]*)</h3>`)

func visibleTitles(body string) []string {
	var out []string
	for _, m := range visibleCardRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestPublicationsFilter(t *testing.T) {
	f := newFixture(t, 0)
	all := []string{
		"The Future of Human-AI Collaboration",
		"Ethical AI Implementation Guidelines",
		"AI Readiness Assessment Framework",
	}
	tests := []struct {
		name    string
		query   string
		want    []string
		noMatch bool
	}{
		{"white paper", "?category=White+Paper", []string{"Ethical AI Implementation Guidelines"}, false},
		{"all with ai", "?category=All&q=ai", all, false},
		{"term is case insensitive", "?q=FUTURE", []string{"The Future of Human-AI Collaboration"}, false},
		{"technical report with ethics", "?category=Technical+Report&q=ethics", nil, true},
		{"unknown category matches nothing", "?category=Poetry", nil, true},
		{"no query", "", all, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get(t, "/publications"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Equal(t, tt.want, visibleTitles(body))
			msg := `<p class="no-results" data-filter-empty>No publications found matching your criteria.</p>`
			if tt.noMatch {
				assert.Contains(t, body, msg)
			} else {
				assert.NotContains(t, body, msg)
			}
		})
	}
}

func validVolunteer() url.Values {
	return url.Values{
		"name":         {"Asha Patel"},
		"email":        {"asha@example.org"},
		"contact":      {"+91 98765 43210"},
		"bio":          {"Community organiser."},
		"skills":       {"Python"},
		"contribution": {"Run local meetups."},
	}
}

func TestVolunteerSubmissionClosesDialog(t *testing.T) {
	f := newFixture(t, 0)

	open := f.get(t, "/volunteer?apply=1")
	require.Equal(t, http.StatusOK, open.Code)
	assert.Contains(t, open.Body.String(), `aria-labelledby="apply-title" open>`)

	rec := f.post(t, "/volunteer", validVolunteer())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/volunteer?thanks=1", rec.Header().Get("Location"))

	got := f.rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, submit.KindVolunteer, got[0].kind)
	assert.Equal(t, []string{"Python"}, got[0].payload.(forms.Volunteer).Skills)

	after := f.get(t, rec.Header().Get("Location"))
	require.Equal(t, http.StatusOK, after.Code)
	body := after.Body.String()
	assert.NotContains(t, body, "<dialog")
	assert.Contains(t, body, "Thank you for applying!")
}

func TestVolunteerSubmissionInvalid(t *testing.T) {
	f := newFixture(t, 0)
	form := validVolunteer()
	form.Set("email", "not-an-email")
	form.Del("bio")
	form.Add("skills", "Juggling")

	rec := f.post(t, "/volunteer", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `aria-labelledby="apply-title" open>`)
	assert.Contains(t, body, `<p class="field-error" id="email-error">Enter a valid email address.</p>`)
	assert.Contains(t, body, `id="bio-error"`)
	assert.Contains(t, body, `id="skills-error"`)
	assert.Contains(t, body, `value="Asha Patel"`)
	assert.Contains(t, body, `value="Python" checked>`)
	assert.Empty(t, f.rec.all())
}

func TestVolunteerSubmissionStoreFailure(t *testing.T) {
	f := newFixture(t, 0)
	f.rec.err = errors.New("disk full")
	rec := f.post(t, "/volunteer", validVolunteer())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthToggle(t *testing.T) {
	f := newFixture(t, 0)
	signUp := f.get(t, "/auth").Body.String()
	assert.Contains(t, signUp, `name="confirmPassword"`)
	assert.Contains(t, signUp, "Join the revolution")

	signIn := f.get(t, "/auth?mode=signin").Body.String()
	assert.NotContains(t, signIn, `name="confirmPassword"`)
	assert.Contains(t, signIn, "Welcome back, human")
}

func TestAuthSignUpPasswordMismatch(t *testing.T) {
	f := newFixture(t, 0)
	rec := f.post(t, "/auth", url.Values{
		"mode": {"signup"}, "name": {"Ada"}, "email": {"ada@example.com"},
		"password": {"secret-one"}, "confirmPassword": {"secret-two"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Passwords do not match.")
	assert.Contains(t, body, `value="ada@example.com"`)
	assert.NotContains(t, body, "secret-one")
	assert.Empty(t, f.rec.all())
}

func TestAuthSignInWaitsThenSubmits(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	start := time.Now()
	rec := f.post(t, "/auth", url.Values{"mode": {"signin"}, "email": {"ada@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Contains(t, rec.Body.String(), "Welcome back! You are signed in.")

	got := f.rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, submit.KindSignIn, got[0].kind)
}

func TestAuthDelayEndsWithRequest(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	form := url.Values{"mode": {"signin"}, "email": {"ada@example.com"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(form.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.srv.ServeHTTP(httptest.NewRecorder(), req)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("auth handler kept waiting after the request was cancelled")
	}
	assert.Empty(t, f.rec.all())
}

func TestGoogleRedirect(t *testing.T) {
	f := newFixture(t, 0)
	rec := f.get(t, "/auth/google")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.google.com/signin/v2/identifier", rec.Header().Get("Location"))
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, 0)
	tests := []struct {
		name     string
		form     url.Values
		location string
	}{
		{"footer on about", url.Values{"email": {"me@example.com"}, "source": {"/about"}}, "/about?subscribed=1"},
		{"invalid email", url.Values{"email": {"nope"}, "source": {"/stories"}}, "/stories?subscribed=0"},
		{"foreign source", url.Values{"email": {"me@example.com"}, "source": {"https://evil.example"}}, "/?subscribed=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.post(t, "/subscribe", tt.form)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
	assert.Len(t, f.rec.all(), 2)

	page := f.get(t, "/about?subscribed=1").Body.String()
	assert.Contains(t, page, noticeSubscribed)
}

func TestEffectPoster(t *testing.T) {
	f := newFixture(t, 0)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/effects/home-hero.svg").Code)

	sf, err := f.stage.MountPreset("home-hero", "hero-stars")
	require.NoError(t, err)

	rec := f.get(t, "/effects/home-hero.svg?w=320&h=200")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `viewBox="0 0 320 200"`)

	sf.Close()
	assert.Equal(t, http.StatusNotFound, f.get(t, "/effects/home-hero.svg").Code)
}

func TestLiveSurfaceAnimatesUntilShutdown(t *testing.T) {
	f := newFixture(t, 0)
	sf, err := f.stage.MountPreset("forums-knot", "forums-knot")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- effect.Loop(ctx, sf, time.Millisecond, effect.RendererFunc(func(effect.Frame) error { return nil }))
	}()

	assert.Eventually(t, func() bool {
		return f.get(t, "/effects/forums-knot.svg").Code == http.StatusOK
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, f.stage.Attached())
}

func TestOperationalRoutes(t *testing.T) {
	f := newFixture(t, 0)

	health := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "ok", health.Body.String())

	css := f.get(t, "/static/css/site.css")
	assert.Equal(t, http.StatusOK, css.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", css.Header().Get("Cache-Control"))

	missing := f.get(t, "/does-not-exist")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Page Not Found", heading(t, missing.Body.String()))

	f.post(t, "/subscribe", url.Values{"email": {"me@example.com"}})
	m := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), `hwai_form_submissions_total{kind="subscription",outcome="ok"} 1`)
	assert.Contains(t, m.Body.String(), `hwai_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
