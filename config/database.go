package config

import (
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	var (
		db  *gorm.DB
		err error
	)
	if dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		// Local fallback when no Postgres is configured
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "data/app.db"
		}
		log.Printf("DB_URL not set, using sqlite at %s", path)
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		panic("Failed to connect database")
	}

	DB = db
}
