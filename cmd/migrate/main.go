package main

import (
	"os"

	"dreambees-be/internal/model"
	"dreambees-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" || driver == "memory" {
		driver = database.DriverPostgres
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect
	db, err := database.Open(driver, dsn)
	if err != nil {
		color.Red("Error: Failed to connect to %s database: %v", driver, err)
		os.Exit(1)
	}

	color.Cyan("Running AutoMigrate for chats and messages (%s)...", driver)

	// 3. AutoMigrate
	if err := model.AutoMigrate(db); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: database migration completed")
}
