// Package web serves the image lab as a small server-rendered HTML application.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"imagelab-cli/internal/controller"
	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/view"
)

// SessionCookie holds the id of the browser's session
const SessionCookie = "imagelab_session"

const (
	shutdownTimeout = 5 * time.Second

	// Sessions untouched for this long are dropped by the sweeper
	sessionTTL    = 30 * time.Minute
	sweepInterval = time.Minute
	maxSessions   = 1000
)

// session is the per-browser controller plus a notice waiting to be shown.
// lastSeen is guarded by Server.mu.
type session struct {
	ctrl     *controller.Controller
	notice   string
	lastSeen time.Time
}

// flashNotifier queues a convert message for the next page render
type flashNotifier struct {
	server *Server
	sess   *session
}

func (n flashNotifier) Alert(message string) error {
	n.server.mu.Lock()
	n.sess.notice = message
	n.server.mu.Unlock()
	return nil
}

// Server holds every browser session in memory
type Server struct {
	newController func() *controller.Controller
	renderer      interfaces.ViewRenderer
	logger        *slog.Logger

	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewServer creates a server. newController is called once per new browser session.
func NewServer(newController func() *controller.Controller, renderer interfaces.ViewRenderer, logger *slog.Logger) *Server {
	return &Server{
		newController: newController,
		renderer:      renderer,
		logger:        logger,
		ttl:           sessionTTL,
		maxSessions:   maxSessions,
		now:           time.Now,
		sessions:      make(map[uuid.UUID]*session),
	}
}

// Handler builds the gin router
func (s *Server) Handler() (http.Handler, error) {
	tmpl, err := s.renderer.HTMLTemplate()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.PageHandler)
	r.POST("/state", s.StateHandler)
	r.POST("/theme", s.ThemeHandler)
	r.POST("/convert", s.ConvertHandler)
	r.GET("/api/state", s.StateJSONHandler)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r, nil
}

// Serve listens on addr until ctx is cancelled
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{Handler: handler}
	s.logger.Info("listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.SweepIdle()
			}
		}
	})
	return g.Wait()
}

// PageHandler renders the page for the caller's session
func (s *Server) PageHandler(c *gin.Context) {
	sess := s.session(c)

	s.mu.Lock()
	notice := sess.notice
	sess.notice = ""
	s.mu.Unlock()

	c.HTML(http.StatusOK, view.PageTemplate, view.NewViewData(sess.ctrl.Snapshot(), notice))
}

// StateHandler applies the submitted form fields and then the requested action
func (s *Server) StateHandler(c *gin.Context) {
	sess := s.session(c)
	ctrl := sess.ctrl

	if prompt, ok := c.GetPostForm("prompt"); ok {
		ctrl.SetPrompt(prompt)
	}
	// Unparsable numbers leave the stored value in place
	if width, ok := c.GetPostForm("width"); ok {
		ctrl.SetWidth(width)
	}
	if height, ok := c.GetPostForm("height"); ok {
		ctrl.SetHeight(height)
	}
	if model, ok := c.GetPostForm("model"); ok {
		ctrl.SetModel(model)
	}

	switch action := c.PostForm("action"); action {
	case "", "update":
	case "random":
		ctrl.PickRandomPrompt()
	case "generate":
		if ctrl.Snapshot().InFlight {
			s.logger.Debug("generate ignored", "reason", "in flight")
			break
		}
		// The request outlives this handler; the page polls until it finishes
		ctrl.Start(context.Background())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action " + action})
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// ThemeHandler switches the session's theme
func (s *Server) ThemeHandler(c *gin.Context) {
	sess := s.session(c)
	sess.ctrl.SetTheme(c.PostForm("theme"))
	c.Redirect(http.StatusSeeOther, "/")
}

// ConvertHandler queues the convert explanation as an alert on the next page load
func (s *Server) ConvertHandler(c *gin.Context) {
	sess := s.session(c)
	if err := sess.ctrl.ConvertClicked(flashNotifier{server: s, sess: sess}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// StateJSONHandler returns the session's view data as JSON. It never starts a session.
func (s *Server) StateJSONHandler(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return
	}
	data := view.NewViewData(sess.ctrl.Snapshot(), "")
	c.JSON(http.StatusOK, gin.H{
		"theme": data.State.Theme.String(),
		"view":  data,
	})
}

// lookup returns the session named by the caller's cookie and marks it as seen
func (s *Server) lookup(c *gin.Context) (*session, bool) {
	value, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

// session returns the caller's session, creating one and setting the cookie if needed
func (s *Server) session(c *gin.Context) *session {
	if sess, ok := s.lookup(c); ok {
		return sess
	}

	id := uuid.New()
	sess := &session{ctrl: s.newController()}

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	sess.lastSeen = s.now()
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("session created", "id", id.String(), "sessions", count)
	c.SetCookie(SessionCookie, id.String(), 0, "/", "", false, true)
	return sess
}

// SweepIdle drops sessions not seen within the TTL and returns how many were removed
func (s *Server) SweepIdle() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("idle sessions dropped", "removed", removed, "sessions", remaining)
	}
	return removed
}

func (s *Server) evictOldestLocked() {
	var (
		oldestID uuid.UUID
		oldest   *session
	)
	for id, sess := range s.sessions {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldestID)
	}
}

// SessionCount reports how many sessions are held in memory
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
