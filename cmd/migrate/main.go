package main

import (
	"log"
	"os"

	"leadflow-be/internal/model"
	"leadflow-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	log.Println("Step 1: Setting up Extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.User{},
		&model.Setting{},
		&model.SubscriptionPlan{},
		&model.Location{},
		&model.ServiceProvider{}, // also creates location_service_provider
		&model.Subscription{},
		&model.AssignmentCursor{},
		&model.Lead{},
		&model.LeadNote{},
		&model.Notification{},
	}
	log.Printf("Step 2: Running AutoMigrate for %d Tables...", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating Constraints and Indexes...")
	postMigrationSQL := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'leads_status_check') THEN
		   ALTER TABLE leads ADD CONSTRAINT leads_status_check CHECK (status IN ('new', 'contacted', 'closed'));
		 END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'locations_algorithm_check') THEN
		   ALTER TABLE locations ADD CONSTRAINT locations_algorithm_check CHECK (assignment_algorithm IN ('round_robin', 'geographic', 'load_balance', 'manual'));
		 END IF; END $$;`,
		`ALTER TABLE notifications ALTER COLUMN id SET DEFAULT gen_random_uuid();`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (recipient_type, recipient_id) WHERE read_at IS NULL;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
