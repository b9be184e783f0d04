package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"epaperadmin/internal/app"
	"epaperadmin/internal/ratelimit"
	"epaperadmin/internal/util"
	"epaperadmin/internal/view"
	"epaperadmin/pkg/domain"
	"epaperadmin/pkg/store"
)

const sessionCookie = "epaper_session"

// Config wires required dependencies for the HTTP server.
type Config struct {
	App          *app.App
	Renderer     *view.Renderer
	LoginLimiter *ratelimit.FixedWindowLimiter
	Proxies      *util.TrustedProxies
}

// Server exposes the admin HTTP surface.
type Server struct {
	app     *app.App
	view    *view.Renderer
	limiter *ratelimit.FixedWindowLimiter
	proxies *util.TrustedProxies
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = view.New()
	}
	s := &Server{
		app:     cfg.App,
		view:    renderer,
		limiter: cfg.LoginLimiter,
		proxies: cfg.Proxies,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped in the shared
// middleware chain.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithSecurityHeaders(h)
	h = util.WithCORS(h)
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/logout", s.handleLogout)

	s.mux.Handle("/admin/categories", s.authenticated(s.pageHandler(app.PageCategories)))
	s.mux.Handle("/admin/editions", s.authenticated(s.pageHandler(app.PageEditions)))
	s.mux.Handle("/admin/clips", s.authenticated(s.pageHandler(app.PageClips)))
	s.mux.Handle("/admin/settings", s.authenticated(s.pageHandler(app.PageSettings)))
	s.mux.Handle("/admin/users", s.authenticated(s.pageHandler(app.PageUsers)))

	s.mux.HandleFunc("/api/editions/", s.handleEditionView)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session gate

type pageFunc func(http.ResponseWriter, *http.Request, domain.Principal)

func (s *Server) authenticated(next pageFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := sessionToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		principal, ok := s.app.PrincipalFromToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, principal)
	})
}

// sessionToken reads the session cookie, falling back to a bearer
// header for API clients.
func sessionToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// auth handlers

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.limiter != nil {
		ip := util.ClientIP(r, s.proxies)
		if !s.limiter.Allow("login:" + ip) {
			writeError(w, http.StatusTooManyRequests, "too many login attempts, try again shortly")
			return
		}
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCredentials),
			errors.Is(err, app.ErrUserDisabled),
			errors.Is(err, app.ErrUserLocked):
			util.LoggerFromContext(r.Context()).Warn("login rejected", "username", req.Username, "reason", err.Error())
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			util.LoggerFromContext(r.Context()).Error("login failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	util.LoggerFromContext(r.Context()).Info("login", "user_id", user.ID, "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := sessionToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		util.LoggerFromContext(r.Context()).Error("logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// admin pages

// pageHandler serves one admin screen: GET returns the current entity
// list, POST runs the submitted action and answers with the re-queried
// list plus the action's result. Nothing from the write path is reused
// for rendering.
func (s *Server) pageHandler(page app.Page) pageFunc {
	return func(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
		switch r.Method {
		case http.MethodGet:
			s.renderPage(w, r, page, domain.Result{})
		case http.MethodPost:
			fields, err := formFields(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid form body")
				return
			}
			res := s.app.Execute(r.Context(), principal, page, fields)
			s.renderPage(w, r, page, res)
		default:
			methodNotAllowed(w)
		}
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page app.Page, res domain.Result) {
	wantHTML := r.URL.Query().Get("format") == "html"
	write := func(items any, count int, html string, err error) {
		if err != nil {
			util.LoggerFromContext(r.Context()).Error("page query failed", "page", page, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if wantHTML {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, html)
			return
		}
		writeJSON(w, http.StatusOK, pageResponse{Result: res, Items: items, Count: count})
	}

	switch page {
	case app.PageCategories:
		cats, err := s.app.ListCategories()
		var html string
		if err == nil && wantHTML {
			html, err = s.view.Categories(cats, res)
		}
		write(cats, len(cats), html, err)
	case app.PageEditions:
		editions, err := s.app.ListEditions(editionFilter(r))
		var html string
		if err == nil && wantHTML {
			html, err = s.view.Editions(editions, res)
		}
		write(editions, len(editions), html, err)
	case app.PageClips:
		editionID, _ := strconv.ParseInt(r.URL.Query().Get("edition_id"), 10, 64)
		clips, err := s.app.ListClipsByEdition(editionID)
		var html string
		if err == nil && wantHTML {
			html, err = s.view.Clips(clips, res)
		}
		write(clips, len(clips), html, err)
	case app.PageSettings:
		list, err := s.app.GetSettings()
		var html string
		if err == nil && wantHTML {
			html, err = s.view.Settings(list, res)
		}
		write(list, len(list), html, err)
	case app.PageUsers:
		users, err := s.app.ListUsers()
		var html string
		if err == nil && wantHTML {
			html, err = s.view.Users(users, res)
		}
		write(users, len(users), html, err)
	}
}

func editionFilter(r *http.Request) store.EditionFilter {
	q := r.URL.Query()
	f := store.EditionFilter{
		Status:   domain.EditionStatus(q.Get("status")),
		Category: q.Get("category"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}
	return f
}

// formFields flattens the submitted form to first values. Handlers and
// the command decoder only ever deal with single-valued fields;
// multi-select inputs arrive comma-joined.
func formFields(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

// public view counter

func (s *Server) handleEditionView(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/editions/")
	idStr, ok := strings.CutSuffix(rest, "/view")
	if !ok || strings.Contains(idStr, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid edition id")
		return
	}
	if err := s.app.RecordEditionView(id); err != nil {
		var nferr *domain.NotFoundError
		if errors.As(err, &nferr) {
			writeError(w, http.StatusNotFound, nferr.Error())
			return
		}
		util.LoggerFromContext(r.Context()).Error("record view failed", "edition_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  domain.AdminUser `json:"user"`
}

type pageResponse struct {
	Result domain.Result `json:"result"`
	Items  any           `json:"items"`
	Count  int           `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
