package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

// Open connects to the database selected by the DSN and runs migrations.
// Postgres DSNs (postgres:// URLs or key=value form) use the postgres driver;
// anything else is treated as a SQLite file path.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "ukonnect.db"
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	retries := 1
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
		// Postgres may still be starting when we are.
		retries = 5
	} else {
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < retries; i++ {
		conn, err = gorm.Open(dialector, &gorm.Config{Logger: dbLogger})
		if err == nil {
			break
		}
		if i < retries-1 {
			log.Printf("db connect attempt %d/%d failed, retrying: %v", i+1, retries, err)
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.RefreshToken{},
		&models.TaskTemplate{},
		&models.UserTask{},
		&models.Reminder{},
		&models.LocalService{},
		&models.FaqEntry{},
		&models.Post{},
		&models.Reply{},
		&models.Document{},
	)
	if err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
