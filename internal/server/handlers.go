package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/catalog"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/effect"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/forms"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/model"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/site"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/submit"
)

const (
	noticeSubscribed    = "Thanks for subscribing! Watch your inbox for the latest AI insights."
	noticeSubscribeFail = "Please enter a valid email address to subscribe."
	noticeSignedUp      = "Welcome to the revolution! Your account request has been received."
	noticeSignedIn      = "Welcome back! You are signed in."
	noticeTryAgain      = "Something went wrong. Please try again."

	maxPosterSide = 4096
)

// data returns the page context with the subscribe notice applied.
func (s *Server) data(p site.Page, r *http.Request) *site.View {
	data := s.site.Data(p)
	switch r.URL.Query().Get("subscribed") {
	case "1":
		data.Notice = noticeSubscribed
	case "0":
		data.Notice = noticeSubscribeFail
	}
	return data
}

// render buffers the page and writes it with status. A template error
// becomes a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data *site.View) {
	var buf bytes.Buffer
	if err := s.site.Render(&buf, data); err != nil {
		s.log.Error("failed to render page",
			zap.String("layout", data.Layout),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePage(p site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, s.data(p, r))
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	data := s.data(site.NotFound, r)
	data.Path = r.URL.Path
	s.render(w, r, http.StatusNotFound, data)
}

func (s *Server) handlePublications(p site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.data(p, r)
		pubs := data.Catalog.Publications
		q := r.URL.Query()
		crit := catalog.Criteria{Category: q.Get("category"), Term: q.Get("q")}
		if crit.Category == "" {
			crit.Category = catalog.AllCategories
		}
		data.Publications.Category = crit.Category
		data.Publications.Term = crit.Term
		data.Publications.Results = catalog.Filter(pubs, crit)
		s.metrics.FilterResults.Observe(float64(len(data.Publications.Results)))
		s.render(w, r, http.StatusOK, data)
	}
}

func (s *Server) handleVolunteer(p site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.data(p, r)
		q := r.URL.Query()
		data.Volunteer.Open = q.Get("apply") == "1"
		data.Volunteer.Thanks = q.Get("thanks") == "1" && !data.Volunteer.Open
		s.render(w, r, http.StatusOK, data)
	}
}

func (s *Server) handleVolunteerPost(p site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}
		data := s.data(p, r)
		v, err := forms.ParseVolunteer(r.PostForm, data.Catalog.Skills)
		var verrs forms.ValidationErrors
		if errors.As(err, &verrs) {
			s.metrics.Submission(string(submit.KindVolunteer), "invalid")
			data.Volunteer = model.VolunteerView{Open: true, Values: v.Values(), Skills: v.SkillSet(), Errors: verrs}
			s.render(w, r, http.StatusUnprocessableEntity, data)
			return
		}
		if !s.store(w, r, submit.KindVolunteer, v) {
			return
		}
		http.Redirect(w, r, "/volunteer?thanks=1", http.StatusSeeOther)
	}
}

func (s *Server) handleAuth(p site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.data(p, r)
		data.Auth.SignUp = r.URL.Query().Get("mode") != forms.ModeSignIn
		s.render(w, r, http.StatusOK, data)
	}
}

func (s *Server) handleAuthPost(p site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}
		data := s.data(p, r)
		a, err := forms.ParseAuth(r.PostForm)
		kind := submit.KindSignIn
		if a.SignUp() {
			kind = submit.KindSignUp
		}
		data.Auth = model.AuthView{SignUp: a.SignUp(), Values: a.Values()}

		var verrs forms.ValidationErrors
		if errors.As(err, &verrs) {
			s.metrics.Submission(string(kind), "invalid")
			data.Auth.Errors = verrs
			s.render(w, r, http.StatusUnprocessableEntity, data)
			return
		}
		if err := wait(r.Context(), s.cfg.Auth.SimulatedDelay); err != nil {
			s.log.Debug("auth request abandoned", zap.Error(err))
			return
		}
		if !s.store(w, r, kind, a) {
			return
		}
		data.Notice = noticeSignedIn
		if a.SignUp() {
			data.Notice = noticeSignedUp
		}
		data.Auth.Values = nil
		s.render(w, r, http.StatusOK, data)
	}
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.Auth.GoogleSignInURL, http.StatusFound)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	sub, err := forms.ParseSubscription(r.PostForm)
	back := "/"
	if p, ok := site.Lookup(sub.Source); ok {
		back = p.Path
	}
	target := func(ok bool) string {
		v := url.Values{}
		if ok {
			v.Set("subscribed", "1")
		} else {
			v.Set("subscribed", "0")
		}
		return back + "?" + v.Encode()
	}
	if err != nil {
		s.metrics.Submission(string(submit.KindSubscription), "invalid")
		http.Redirect(w, r, target(false), http.StatusSeeOther)
		return
	}
	if !s.store(w, r, submit.KindSubscription, sub) {
		return
	}
	http.Redirect(w, r, target(true), http.StatusSeeOther)
}

// store submits payload and reports whether the handler may continue. On
// failure it has already written the error response.
func (s *Server) store(w http.ResponseWriter, r *http.Request, kind submit.Kind, payload any) bool {
	id, err := s.submit.Submit(r.Context(), kind, payload)
	if err != nil {
		s.metrics.Submission(string(kind), "error")
		s.log.Error("failed to store submission",
			zap.String("kind", string(kind)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, noticeTryAgain, http.StatusInternalServerError)
		return false
	}
	s.metrics.Submission(string(kind), "ok")
	s.log.Debug("submission accepted", zap.String("kind", string(kind)), zap.String("id", id))
	return true
}

// handleEffect serves the current frame of a live surface as SVG.
func (s *Server) handleEffect(w http.ResponseWriter, r *http.Request) {
	if s.stage == nil {
		http.NotFound(w, r)
		return
	}
	sf, ok := s.stage.Lookup(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	vp := effect.Viewport{Width: dimension(r, "w"), Height: dimension(r, "h")}
	frame, err := sf.Snapshot(vp)
	if errors.Is(err, effect.ErrSurfaceClosed) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("failed to snapshot effect", zap.String("name", sf.Name()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := effect.WriteSVG(&buf, frame, site.PosterBackground); err != nil {
		s.log.Error("failed to draw effect", zap.String("name", sf.Name()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// dimension reads a viewport side from the query. Zero keeps the surface's
// own viewport.
func dimension(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return 0
	}
	if n > maxPosterSide {
		return maxPosterSide
	}
	return n
}

// wait blocks for d or until ctx ends.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
