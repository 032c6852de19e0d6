package main

import (
	"fmt"
	"log"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/database"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/utils"
)

func main() {
	fmt.Println("🌱 Beach Market Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Branch{},
		&models.ExtendedInventoryItem{},
		&models.BranchMonitorState{},
		&models.AlertLog{},
		&models.Ticket{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Check if data already exists
	var branchCount int64
	db.Model(&models.Branch{}).Count(&branchCount)
	if branchCount > 0 {
		fmt.Printf("⚠️  Database already has %d branches. Clear it first? (y/N): ", branchCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE extended_inventory_items CASCADE")
		db.Exec("TRUNCATE TABLE branch_monitor_states CASCADE")
		db.Exec("TRUNCATE TABLE alert_logs CASCADE")
		db.Exec("TRUNCATE TABLE tickets CASCADE")
		db.Exec("TRUNCATE TABLE branches CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println()
	fmt.Println("📦 Creating demo data...")

	// 1. Admin user
	fmt.Println("👤 Creating admin user...")
	password, err := utils.HashPassword("admin123")
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	admin := models.UserAuth{
		Username: "admin",
		Email:    "admin@beachmarket.local",
		Password: password,
		Name:     "Administrator",
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("⚠️  Failed to create admin user (might exist): %v", err)
	} else {
		fmt.Println("   ✓ admin@beachmarket.local / admin123")
	}

	// 2. Branches
	fmt.Println("🏪 Creating branches...")
	branches := []models.Branch{
		{Code: "playa", Name: "Playa Central", Active: true, CatalogHost: "10.0.0.5", CatalogPort: 3306, CatalogUser: "pos", CatalogDatabase: "pos_playa"},
		{Code: "puerto", Name: "Puerto Norte", Active: true, CatalogHost: "10.0.0.6", CatalogPort: 3306, CatalogUser: "pos", CatalogDatabase: "pos_puerto"},
		{Code: "centro", Name: "Centro Comercial", Active: true, CatalogHost: "10.0.0.7", CatalogPort: 3306, CatalogUser: "pos", CatalogDatabase: "pos_centro"},
	}
	for i := range branches {
		if cfg.EncKey != "" {
			encrypted, err := utils.EncryptCredential("demo-password", cfg.EncKey)
			if err != nil {
				log.Fatalf("❌ Failed to encrypt demo credentials: %v", err)
			}
			branches[i].CatalogPassword = encrypted
		}
		if err := db.Create(&branches[i]).Error; err != nil {
			log.Printf("⚠️  Failed to create branch %s: %v", branches[i].Code, err)
		} else {
			fmt.Printf("   ✓ Created branch: [%s] %s\n", branches[i].Code, branches[i].Name)
		}
	}

	// 3. Extended inventory with a spread of expiration dates
	fmt.Println("📦 Creating extended inventory...")
	now := time.Now()
	fridge := "2-4C"
	items := []models.ExtendedInventoryItem{
		{BranchCode: "playa", Barcode: "8410000810004", Description: "Yogur natural pack 4", ExpirationDate: now.AddDate(0, 0, 2), Temperature: &fridge, IsActive: true},
		{BranchCode: "playa", Barcode: "8410000820005", Description: "Leche entera 1L", ExpirationDate: now.AddDate(0, 0, 5), Temperature: &fridge, IsActive: true},
		{BranchCode: "playa", Barcode: "8410000830006", Description: "Pan de molde integral", ExpirationDate: now.AddDate(0, 0, 6), IsActive: true, IsPromotion: true},
		{BranchCode: "puerto", Barcode: "8410000840007", Description: "Queso fresco 250g", ExpirationDate: now.AddDate(0, 0, 1), Temperature: &fridge, IsActive: true},
		{BranchCode: "puerto", Barcode: "8410000850008", Description: "Zumo de naranja 1L", ExpirationDate: now.AddDate(0, 0, 12), IsActive: true},
		{BranchCode: "centro", Barcode: "8410000860009", Description: "Jamon cocido lonchas", ExpirationDate: now.AddDate(0, 0, 3), Temperature: &fridge, IsActive: true},
	}
	for _, item := range items {
		if err := db.Create(&item).Error; err != nil {
			log.Printf("⚠️  Failed to create item %s: %v", item.Barcode, err)
		} else {
			fmt.Printf("   ✓ Created item: [%s] %s (expires %s)\n", item.Barcode, item.Description, item.ExpirationDate.Format("2006-01-02"))
		}
	}

	// 4. A sample ticket
	fmt.Println("🎫 Creating sample ticket...")
	ticket := models.Ticket{
		Reference:   "TCK-demo0001",
		BranchCode:  "playa",
		Subject:     "Barcode scanner intermittent",
		Description: "The scanner at checkout 2 drops the connection a few times a day.",
		Status:      models.TicketStatusOpen,
		Priority:    "normal",
		CreatedBy:   "admin",
	}
	if err := db.Create(&ticket).Error; err != nil {
		log.Printf("⚠️  Failed to create ticket: %v", err)
	} else {
		fmt.Printf("   ✓ Created ticket: %s\n", ticket.Reference)
	}

	// Summary
	fmt.Println()
	fmt.Println("🎉 Demo data created successfully!")
	fmt.Println()
	fmt.Println("📊 Summary:")
	fmt.Printf("   • %d branches\n", len(branches))
	fmt.Printf("   • %d inventory items with expiration data\n", len(items))
	fmt.Println("   • 1 admin user, 1 open ticket")
	fmt.Println()
	fmt.Println("🌐 Start the server:")
	fmt.Println("   go run ./cmd/api/main.go")
	fmt.Printf("   Then visit: http://localhost:%s\n", cfg.Port)
}
