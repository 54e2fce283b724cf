package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/termfolio/internal/analytics"
	"github.com/Zachkp/termfolio/internal/config"
	"github.com/Zachkp/termfolio/internal/content"
	"github.com/Zachkp/termfolio/internal/terminal"
	"golang.org/x/time/rate"
)

//go:embed templates/*.html static/*
var assets embed.FS

const sessionCookie = "tf_session"

type server struct {
	cfg        config.Config
	routes     *terminal.RouteTable
	interp     *terminal.Interpreter
	sessions   *terminal.Manager
	content    *content.Store
	stats      *analytics.Store
	mailer     mailer
	adminToken string
	adminHash  []byte
}

func newServer(cfg config.Config, store *content.Store, stats *analytics.Store) (*server, error) {
	token, err := analytics.RandomToken(32)
	if err != nil {
		return nil, err
	}
	hash, err := adminPasswordHash(cfg.Admin)
	if err != nil {
		return nil, err
	}

	routes := terminal.DefaultRoutes()
	interp := terminal.NewInterpreter(routes).WithIdentity(store.Portfolio().Identity())
	sessions := terminal.NewManager(interp, terminal.ManagerConfig{
		TTL:         cfg.Terminal.SessionTTL,
		RevealFor:   cfg.Terminal.RevealFor,
		Rate:        rate.Limit(cfg.Terminal.CommandRate),
		Burst:       cfg.Terminal.CommandBurst,
		MaxSessions: cfg.Terminal.MaxSessions,
	})
	if !cfg.SMTP.Configured() {
		log.Println("WARNING: SMTP credentials not set; the contact form will report an error.")
	}

	return &server{
		cfg:        cfg,
		routes:     routes,
		interp:     interp,
		sessions:   sessions,
		content:    store,
		stats:      stats,
		mailer:     smtpMailer{cfg: cfg.SMTP},
		adminToken: token,
		adminHash:  hash,
	}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"upper": strings.ToUpper,
		"lines": func(s string) []string { return strings.Split(strings.Trim(s, "\n"), "\n") },
	}
}

func (s *server) engine() (*gin.Engine, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))
	r.Use(s.visitorTrackingMiddleware())

	// Section pages, one per route table entry
	for _, sec := range s.routes.Sections() {
		r.GET(sec.Path, s.sectionHandler(sec))
	}

	// HTMX terminal endpoints
	r.POST("/terminal", s.terminalFragment)
	r.GET("/terminal/recall", s.recall)

	api := r.Group("/api")
	api.POST("/terminal", s.terminalJSON)
	api.GET("/terminal/history", s.historyJSON)
	api.GET("/terminal/complete", s.completeJSON)
	api.GET("/sections", s.sectionsJSON)

	r.POST("/contact", s.contact)

	s.setupAdminRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		sess := s.session(c)
		c.HTML(http.StatusNotFound, "404.html", gin.H{
			"missing":  c.Request.URL.Path,
			"path":     sess.Path(),
			"lines":    NotFoundLines,
			"sections": s.routes.Sections(),
			"entries":  sess.Entries(),
			"matrix":   sess.MatrixEnabled(),
		})
	})
	return r, nil
}

// session returns the visitor's terminal session, issuing a cookie for new ones.
func (s *server) session(c *gin.Context) *terminal.Session {
	id, _ := c.Cookie(sessionCookie)
	sess, created := s.sessions.GetOrCreate(id)
	if created {
		c.SetCookie(sessionCookie, sess.ID, int(s.cfg.Terminal.SessionTTL.Seconds()), "/", "", false, true)
	}
	return sess
}

type projectView struct {
	content.Project
	Locked bool
}

type testimonialView struct {
	content.Testimonial
	Locked bool
}

func (s *server) sectionHandler(sec terminal.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := s.session(c)
		sess.SetPath(sec.Path)
		p := s.content.Portfolio()

		projects := make([]projectView, 0, len(p.Projects))
		for _, pr := range p.Projects {
			open := sess.Revealed(pr.ID)
			projects = append(projects, projectView{Project: pr.View(open), Locked: pr.Locked(open)})
		}
		testimonials := make([]testimonialView, 0, len(p.Testimonials))
		for _, t := range p.Testimonials {
			open := sess.Revealed(t.ID)
			testimonials = append(testimonials, testimonialView{Testimonial: t.View(open), Locked: t.Locked(open)})
		}

		c.HTML(http.StatusOK, sec.Key+".html", gin.H{
			"section":      sec,
			"path":         sec.Path,
			"sections":     s.routes.Sections(),
			"portfolio":    p,
			"projects":     projects,
			"testimonials": testimonials,
			"entries":      sess.Entries(),
			"matrix":       sess.MatrixEnabled(),
			"boot":         BootSequence,
			"now":          time.Now().Format(terminal.DateLayout),
		})
	}
}

// submit runs one line for the visitor and records the verb in the background.
func (s *server) submit(c *gin.Context, input string) (*terminal.Session, terminal.Result, bool, error) {
	sess := s.session(c)
	res, dispatched, err := s.sessions.Submit(sess.ID, input)
	if errors.Is(err, terminal.ErrSessionNotFound) {
		// Expired or evicted between lookup and submit; keep the visitor's place
		sess = s.sessions.Create(terminal.WithPath(sess.Path()))
		c.SetCookie(sessionCookie, sess.ID, int(s.cfg.Terminal.SessionTTL.Seconds()), "/", "", false, true)
		res, dispatched, err = s.sessions.Submit(sess.ID, input)
	}
	if err != nil || !dispatched {
		return sess, res, dispatched, err
	}

	verb := terminal.Parse(input).Verb.String()
	success := res.Success
	go func() {
		if err := s.stats.RecordCommand(context.Background(), verb, success); err != nil {
			log.Printf("Error recording command: %v", err)
		}
	}()
	return sess, res, dispatched, nil
}

// terminalFragment handles the HTMX form and returns the refreshed scrollback.
func (s *server) terminalFragment(c *gin.Context) {
	input := c.PostForm("command")
	sess, res, dispatched, err := s.submit(c, input)
	if errors.Is(err, terminal.ErrRateLimited) {
		c.String(http.StatusTooManyRequests, err.Error())
		return
	}

	if dispatched {
		cmd := terminal.Parse(input)
		switch {
		case cmd.Verb == terminal.VerbCD && res.Success:
			c.Header("HX-Push-Url", sess.Path())
			c.Header("HX-Location", sess.Path())
		case cmd.Verb == terminal.VerbMatrix:
			c.Header("HX-Trigger", "matrix-toggle")
		case res.SideEffect != "":
			if showsEncrypted(s.routes, sess.Path()) {
				c.Header("HX-Refresh", "true")
			}
		}
	}

	c.HTML(http.StatusOK, "terminal-entries.html", gin.H{
		"entries": sess.Entries(),
	})
}

type terminalRequest struct {
	Input string `json:"input"`
}

func (s *server) terminalJSON(c *gin.Context) {
	var req terminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, res, dispatched, err := s.submit(c, req.Input)
	switch {
	case errors.Is(err, terminal.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	case !dispatched:
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty command"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": res,
		"path":   sess.Path(),
		"matrix": sess.MatrixEnabled(),
	})
}

func (s *server) historyJSON(c *gin.Context) {
	sess := s.session(c)
	c.JSON(http.StatusOK, gin.H{"entries": sess.Entries()})
}

func (s *server) completeJSON(c *gin.Context) {
	sess := s.session(c)
	completion, found := sess.Complete(c.Query("prefix"))
	c.JSON(http.StatusOK, gin.H{"completion": completion, "found": found})
}

// recall walks the arrow-key history and returns the recalled line as text.
func (s *server) recall(c *gin.Context) {
	sess := s.session(c)
	var line string
	switch c.Query("dir") {
	case "up":
		line, _ = sess.Previous()
	case "down":
		line, _ = sess.Next()
	default:
		c.String(http.StatusBadRequest, "dir must be up or down")
		return
	}
	c.String(http.StatusOK, line)
}

func (s *server) sectionsJSON(c *gin.Context) {
	type section struct {
		Key   string `json:"key"`
		Path  string `json:"path"`
		Label string `json:"label"`
	}
	var out []section
	for _, sec := range s.routes.Sections() {
		out = append(out, section{Key: sec.Key, Path: sec.Path, Label: sec.Label})
	}
	c.JSON(http.StatusOK, out)
}

// run serves until ctx is cancelled, then shuts down gracefully.
func (s *server) run(ctx context.Context) error {
	r, err := s.engine()
	if err != nil {
		return err
	}

	go s.sessions.Run(ctx, s.cfg.Terminal.SweepInterval)
	go s.privacyCleanupLoop(ctx)

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Portfolio terminal listening on :%s", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Println("Shutting down server...")
	return srv.Shutdown(shutdownCtx)
}
