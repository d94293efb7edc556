package main

import (
	"context"
	"embed"
	"log"

	"borelog/internal/analysis"
	"borelog/internal/config"
	"borelog/internal/ledger"
	"borelog/internal/session"
	"borelog/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

//go:embed ui/templates ui/static
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	uploads, closeLedger, err := ledger.Open(context.Background(), appConfig.Database)
	if err != nil {
		log.Fatalf("Failed to open upload ledger: %v", err)
	}
	defer func() {
		if err := closeLedger(); err != nil {
			log.Printf("Failed to close upload ledger: %v", err)
		}
	}()

	controller := session.NewController(session.Options{
		Properties: appConfig.Analysis.Properties,
		Thresholds: analysis.Thresholds{
			MissingPct: appConfig.Analysis.MissingThreshold,
			COVPct:     appConfig.Analysis.COVThreshold,
		},
	}, uploads)

	server, err := ui.NewServer(embeddedFiles, controller, uploads, ui.Options{
		MaxUploadBytes:    int64(appConfig.Server.MaxUploadMB) << 20,
		ReportConcurrency: appConfig.Report.Concurrency,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	log.Printf("✅ Dashboard ready (ledger driver: %s)", appConfig.Database.Driver)
	if err := server.Start(appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
