package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/catalog"
	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/database"
	"github.com/beachmarket/beachmarketgo/internal/handlers"
	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/monitor"
	"github.com/beachmarket/beachmarketgo/internal/notify"
	"github.com/beachmarket/beachmarketgo/internal/reports"
	ws "github.com/beachmarket/beachmarketgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Branch{},
		&models.ExtendedInventoryItem{},
		&models.BranchMonitorState{},
		&models.AlertLog{},
		&models.Ticket{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Branch catalog reader and inventory store
	reader := catalog.NewReader(db.DB, cfg.Catalog, cfg.EncKey)
	store := inventory.NewStore(db.DB, reader)

	// 5. Notification channels. Unconfigured channels get the Null sender,
	// chosen here once rather than by failing at send time.
	var whatsapp notify.Sender
	if cfg.Twilio.Configured() {
		whatsapp = notify.NewWhatsAppSender(cfg.Twilio)
		log.Println("✅ WhatsApp channel configured (Twilio)")
	} else {
		whatsapp = notify.NewNullSender("whatsapp")
		log.Println("⚠️ WhatsApp channel not configured, alerts over this channel are disabled")
	}
	var email notify.Sender
	if cfg.Email.Configured() {
		email = notify.NewEmailSender(cfg.Email)
		log.Println("✅ Email channel configured (Web3Forms)")
	} else {
		email = notify.NewNullSender("email")
		log.Println("⚠️ Email channel not configured, reports over this channel are disabled")
	}

	// 6. Report generator
	var generator reports.Generator = reports.NullGenerator{}
	if cfg.Reports.Enabled {
		fileGen, err := reports.NewFileGenerator(cfg.Reports)
		if err != nil {
			log.Printf("⚠️ Reports: %v, falling back to disabled", err)
		} else {
			generator = fileGen
			log.Printf("✅ Reports enabled, writing to %s", cfg.Reports.OutputDir)
		}
	}

	// 7. Live dashboard feed
	hub := ws.NewHub()
	go hub.Run()

	// 8. Branch outage monitor (Background)
	monitorSvc := monitor.NewService(db.DB, reader, []notify.Sender{whatsapp, email}, cfg.Monitor, hub)
	monitorSvc.Start()

	// 9. Set up HTTP router
	router := handlers.NewRouter(db, cfg, store, reader, generator, whatsapp, email, hub)

	// 10. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s [env: %s]\n", cfg.Port, cfg.NodeEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop the branch monitor
	monitorSvc.Stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
