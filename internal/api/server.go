package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"flipnews/internal/config"
	"flipnews/internal/proxy"
	"flipnews/internal/security"
	"flipnews/internal/upstream"
	"flipnews/internal/web"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router        *gin.Engine
	news          *proxy.Service
	port          int
	spaServer     *web.SPAServer
	swaggerServer *web.SwaggerServer
}

func NewServer(news *proxy.Service, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	securityConfig := &security.SecurityConfig{
		EnableRateLimit:       cfg.Security.EnableRateLimit,
		RateLimitPerSecond:    cfg.Security.RateLimitPerSecond,
		RateLimitBurst:        cfg.Security.RateLimitBurst,
		EnableCORS:            cfg.Security.EnableCORS,
		AllowedOrigins:        cfg.Security.AllowedOrigins,
		EnableSecurityHeaders: cfg.Security.EnableSecurityHeaders,
		MaxRequestSize:        cfg.Security.MaxRequestSize,
		EnableRequestID:       cfg.Security.EnableRequestID,
	}
	security.SetupSecurityMiddleware(router, securityConfig)

	server := &Server{
		router:        router,
		news:          news,
		port:          cfg.Port,
		spaServer:     web.NewSPAServer(cfg.EnableSPA, cfg.StaticDir),
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
	}

	server.setupRoutes()
	return server
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/news/all", s.getNews)
	}

	s.spaServer.RegisterRoutes(s.router)
	s.swaggerServer.RegisterRoutes(s.router)
}

// StartWithContext serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// healthCheck godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// getNews godoc
// @Summary Query news
// @Tags News
// @Produce json
// @Param categories query string false "Comma-separated categories"
// @Param search query string false "Free-text search"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Articles per page" default(3)
// @Param language query string false "Language code" default(en)
// @Router /news/all [get]
func (s *Server) getNews(c *gin.Context) {
	query := proxy.Query{
		Categories: c.Query("categories"),
		Search:     c.Query("search"),
		Language:   c.Query("language"),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	}

	result, err := s.news.GetNews(c.Request.Context(), query)
	if err != nil {
		s.writeError(c, err)
		return
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, result.Body)
}

// writeError maps the upstream error taxonomy onto caller-facing responses.
func (s *Server) writeError(c *gin.Context, err error) {
	var upErr *upstream.Error
	if !errors.As(err, &upErr) {
		upErr = &upstream.Error{Kind: upstream.KindLocalFault, Err: err}
	}

	log.Printf("News query failed [request_id=%s]: %v", requestid.Get(c), upErr)

	switch upErr.Kind {
	case upstream.KindMisconfigured:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Server Misconfiguration",
			"message": "API Token missing on server.",
		})
	case upstream.KindUnauthorized:
		status := upErr.Status
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{
			"error":   "Auth Error",
			"message": "TheNewsApi authentication failed.",
		})
	case upstream.KindRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Rate Limit",
			"message": "Daily request limit reached.",
		})
	case upstream.KindBadGateway:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Bad Gateway",
			"message": "No response from news API.",
		})
	case upstream.KindUpstream:
		if len(upErr.Body) == 0 {
			c.JSON(upErr.Status, gin.H{
				"error":   http.StatusText(upErr.Status),
				"message": "News API returned an error.",
			})
			return
		}
		contentType := upErr.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Data(upErr.Status, contentType, upErr.Body)
	default:
		message := "Unexpected error"
		if upErr.Err != nil {
			message = upErr.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": message,
		})
	}
}

// queryInt returns the integer value of a query parameter, or 0 when it is
// absent or malformed so the service default applies.
func queryInt(c *gin.Context, key string) int {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
