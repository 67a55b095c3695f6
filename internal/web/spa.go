package web

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// SPAServer serves a built browser frontend (index.html plus assets) from a
// directory on disk
type SPAServer struct {
	enabled bool
	dir     string
}

// NewSPAServer creates a new SPA server instance
func NewSPAServer(enabled bool, dir string) *SPAServer {
	if enabled {
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
			log.Printf("SPA disabled: no index.html in %s", dir)
			enabled = false
		}
	}
	return &SPAServer{enabled: enabled, dir: dir}
}

// RegisterRoutes registers the SPA routes with the Gin router. Unknown
// non-API paths fall back to index.html so client-side routes resolve.
func (s *SPAServer) RegisterRoutes(router *gin.Engine) {
	if !s.enabled {
		return
	}

	log.Printf("Serving frontend from %s", s.dir)

	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "No route for " + c.Request.URL.Path,
			})
			return
		}

		if file, ok := s.resolve(c.Request.URL.Path); ok {
			c.File(file)
			return
		}
		c.File(filepath.Join(s.dir, "index.html"))
	})
}

// resolve maps a request path to a regular file inside the frontend
// directory.
func (s *SPAServer) resolve(urlPath string) (string, bool) {
	clean := filepath.Clean("/" + urlPath)
	if clean == "/" {
		return "", false
	}
	file := filepath.Join(s.dir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", false
	}
	return file, true
}
