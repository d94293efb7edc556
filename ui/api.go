package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"borelog/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gin-gonic/gin"
)

// newAPIRouter builds the JSON API. It is a plain net/http router mounted
// under /api so scripts can read the session without the HTML layer.
func (s *Server) newAPIRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/state", s.handleAPIState)
	r.Get("/summary", s.handleAPISummary)
	r.Get("/reliability", s.handleAPIReliability)
	r.Get("/columns/{column}", s.handleAPIColumn)
	r.Get("/uploads", s.handleAPIUploads)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "unknown endpoint " + r.URL.Path})
	})
	return r
}

func (s *Server) mountAPI() {
	s.router.Any("/api/*path", gin.WrapH(http.StripPrefix("/api", s.newAPIRouter())))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]interface{}{"error": err.Error(), "code": errors.GetCode(err)})
}
