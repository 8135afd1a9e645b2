package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/folio/internal/blog"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// articles always answers 200: failures surface in the error field next to
// the fallback list.
func (s *Server) articles(c *gin.Context) {
	c.JSON(http.StatusOK, s.loader.Refresh(c.Request.Context()))
}

func (s *Server) refresh(c *gin.Context) {
	ctx := c.Request.Context()
	s.store.Clear(ctx)
	c.JSON(http.StatusOK, s.loader.Refresh(ctx))
}

type cacheStatus struct {
	Backend    string     `json:"backend"`
	Present    bool       `json:"present"`
	Version    int        `json:"version,omitempty"`
	SavedAt    *time.Time `json:"savedAt,omitempty"`
	AgeSeconds int64      `json:"ageSeconds"`
	Count      int        `json:"count"`
	Expired    bool       `json:"expired"`
}

func (s *Server) cacheInfo(c *gin.Context) {
	status := cacheStatus{Backend: s.store.Backend().Name()}

	entry, ok := s.store.Inspect(c.Request.Context())
	if ok {
		saved := entry.SavedAt()
		status.Present = true
		status.Version = entry.Version
		status.SavedAt = &saved
		status.AgeSeconds = int64(time.Since(saved) / time.Second)
		status.Count = len(entry.Data)
		status.Expired = s.store.Expired(entry)
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) clearCache(c *gin.Context) {
	s.store.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) blog(c *gin.Context) {
	entries, err := blog.Entries(s.blogPath)
	if err != nil {
		s.log.Warn("blog document unavailable", "path", s.blogPath, "error", err)
		c.JSON(http.StatusOK, gin.H{"articles": entries, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": entries})
}
