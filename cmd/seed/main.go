package main

import (
	"log"
	"os"

	"leadflow-be/pkg/database"

	"github.com/fatih/color"
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

	color.Cyan("🌱 Seeding leadflow demo data\n")

	steps := []struct {
		name string
		run  func(*seeder) error
	}{
		{"Admin users", (*seeder).admins},
		{"Subscription plans", (*seeder).plans},
		{"Locations", (*seeder).locations},
		{"Service providers", (*seeder).providers},
		{"Pusher settings", (*seeder).settings},
	}

	s := newSeeder(db)
	for _, step := range steps {
		color.Yellow("\n%s", step.name)
		if err := step.run(s); err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
	}

	color.Green("\n✅ Seeding completed")
}
