// Package api serves persisted crawl results over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-jd-crawler/internal/models"
	"go-jd-crawler/internal/persist"
)

// Store is where the API reads records from.
type Store interface {
	Sources(ctx context.Context) ([]string, error)
	Jobs(ctx context.Context, source string) ([]models.StoredJob, error)
}

type JobsResponse struct {
	Source string             `json:"source"`
	Count  int                `json:"count"`
	Jobs   []models.StoredJob `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter creates the gin engine. Routes are read-only.
func NewRouter(store Store, mode string, startTime time.Time) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	if mode != gin.TestMode {
		r.Use(gin.Logger())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "JD crawler API is running!",
			"status":  "healthy",
		})
	})
	r.GET("/healthz", health(startTime))
	r.GET("/sources", sources(store))
	r.GET("/jobs/:source", jobs(store))
	return r
}

func health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	}
}

func sources(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.Sources(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		if list == nil {
			list = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"sources": list})
	}
}

// jobs supports ?q= (case-insensitive match on title or company), ?rated=true and ?limit=.
func jobs(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := c.Param("source")
		all, err := store.Jobs(c.Request.Context(), source)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, persist.ErrUnknownSource) {
				status = http.StatusNotFound
			}
			c.JSON(status, ErrorResponse{Error: err.Error()})
			return
		}

		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
				return
			}
			limit = n
		}
		q := strings.ToLower(strings.TrimSpace(c.Query("q")))
		rated := c.Query("rated") == "true"

		out := make([]models.StoredJob, 0, len(all))
		for _, j := range all {
			if q != "" && !strings.Contains(strings.ToLower(j.Title), q) && !strings.Contains(strings.ToLower(j.Company), q) {
				continue
			}
			if rated && j.Rating == "" {
				continue
			}
			out = append(out, j)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		c.JSON(http.StatusOK, JobsResponse{Source: source, Count: len(out), Jobs: out})
	}
}
