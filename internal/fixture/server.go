package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FormPath is where the replica serves the form, matching the live site.
const FormPath = "/bugs-form"

var ginModeOnce sync.Once

// Server is the replica web application.
type Server struct {
	quirks   Quirks
	logger   *zap.Logger
	renderer *formRenderer
	engine   *gin.Engine
}

// NewServer builds the replica with the given quirks.
func NewServer(q Quirks, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ginModeOnce.Do(func() { gin.SetMode(gin.ReleaseMode) })

	renderer, err := newFormRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		quirks:   q,
		logger:   logger,
		renderer: renderer,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestID(), s.accessLog())
	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	s.engine.GET(FormPath, s.showForm)
	s.engine.POST(FormPath, s.submitForm)
	return s, nil
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture listening", zap.String("addr", ln.Addr().String()), zap.String("path", FormPath))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) showForm(c *gin.Context) {
	s.write(c, Submission{}, nil)
}

// submitRequest is the posted form. The checkbox posts "on" when ticked
// and nothing otherwise, which a bool field cannot bind.
type submitRequest struct {
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Phone     string `form:"phone"`
	Country   string `form:"country"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Terms     string `form:"terms"`
}

func (r submitRequest) submission() Submission {
	return Submission{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Country:   r.Country,
		Email:     r.Email,
		Password:  r.Password,
		Terms:     r.Terms == "on",
	}
}

func (s *Server) submitForm(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		s.logger.Debug("bad submission", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid form data: %v", err)
		return
	}
	sub := req.submission()
	outcome := Evaluate(sub, s.quirks)
	s.logger.Debug("submission evaluated",
		zap.String("request_id", c.GetString("request_id")),
		zap.Bool("registered", outcome.Registered),
		zap.String("message", outcome.Message))
	s.write(c, sub, &outcome)
}

func (s *Server) write(c *gin.Context, sub Submission, outcome *Outcome) {
	var buf bytes.Buffer
	if err := s.renderer.render(&buf, FormPath, sub, s.quirks, outcome); err != nil {
		s.logger.Error("render bugs form", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// requestID tags every request with an X-Request-ID, reusing the client's.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")))
	}
}
