package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"borelog/internal/session"
	"borelog/ports"

	"github.com/gin-gonic/gin"
)

// Options configure the dashboard server.
type Options struct {
	MaxUploadBytes    int64
	ReportConcurrency int
}

// Server represents the web server for the borehole dashboard
type Server struct {
	router     *gin.Engine
	templates  *template.Template
	assets     fs.FS
	controller *session.Controller
	ledger     ports.UploadLedger
	opts       Options
}

// NewServer creates a new web server instance. Assets must hold the
// ui/templates and ui/static trees.
func NewServer(assets fs.FS, controller *session.Controller, ledger ports.UploadLedger, opts Options) (*Server, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.ReportConcurrency <= 0 {
		opts.ReportConcurrency = 1
	}

	s := &Server{
		router:     gin.Default(),
		assets:     assets,
		controller: controller,
		ledger:     ledger,
		opts:       opts,
	}
	s.router.MaxMultipartMemory = opts.MaxUploadBytes

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	templatesFS, err := fs.Sub(s.assets, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found")
	}

	s.templates = template.New("").Funcs(templateFuncs())
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	log.Printf("[TemplateInit] Parsed %d template files: %v", len(files), files)
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/tabs/raw")
	})
	s.router.GET("/tabs/:tab", s.handleTab)

	// commands
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/select", s.handleSelect)
	s.router.POST("/reset", s.handleReset)

	charts := s.router.Group("/charts")
	charts.GET("/profile.png", s.handleProfileChart(formatPNG))
	charts.GET("/profile.svg", s.handleProfileChart(formatSVG))
	charts.GET("/heatmap.png", s.handleHeatmapChart)
	charts.GET("/histogram.png", s.handleHistogramChart)
	charts.GET("/boxplot.png", s.handleBoxPlotChart)
	charts.GET("/missing.png", s.handleMissingChart)
	charts.GET("/cov.png", s.handleCOVChart)

	downloads := s.router.Group("/downloads")
	downloads.GET("/reliability.xlsx", s.handleReliabilityDownload)
	downloads.GET("/report.xlsx", s.handleReportDownload)

	s.mountAPI()
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	log.Printf("Starting borehole dashboard on http://localhost%s", addr)
	return s.router.Run(addr)
}
