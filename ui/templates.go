package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"log"
	"math"
	"net/http"
	"strings"

	"borelog/internal/charts"

	"github.com/gin-gonic/gin"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		// num formats a statistic; undefined values render empty.
		"num": func(v float64) string {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return ""
			}
			return fmt.Sprintf("%.2f", v)
		},
		"optnum": func(v *float64) string {
			if v == nil {
				return ""
			}
			return fmt.Sprintf("%.2f", *v)
		},
		"dataURI": func(png []byte) template.URL {
			return template.URL(charts.DataURI(png))
		},
		"html": func(b []byte) template.HTML {
			return template.HTML(b)
		},
		"swatch": func(c color.RGBA) template.CSS {
			return template.CSS(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
		},
		"upper": strings.ToUpper,
	}
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		log.Printf("Template data type: %T", data)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
