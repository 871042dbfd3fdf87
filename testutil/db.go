// Package testutil opens throwaway SQLite databases shaped like the
// postgres schema, for package tests.
package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// OpenSQLite returns a fresh in-memory database with every table created.
// A single connection is used so transactions serialize like row locks.
func OpenSQLite() (*gorm.DB, error) {
	// Keep bcrypt fast for user fixtures
	os.Setenv("BCRYPT_COST", "4")

	dsn := fmt.Sprintf("file:barberbook_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Reset deletes every row, children first.
func Reset(db *gorm.DB) {
	for _, table := range []string{
		"reminder_logs", "notifications", "appointments", "working_hours",
		"staff", "services", "shops", "users",
	} {
		db.Exec("DELETE FROM " + table)
	}
}

// createTables uses SQLite DDL because the model tags carry postgres types.
func createTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"phone" TEXT,
			"role" TEXT NOT NULL DEFAULT 'customer',
			"avatar_url" TEXT,
			"last_login" DATETIME,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "shops" (
			"id" TEXT PRIMARY KEY,
			"slug" TEXT NOT NULL UNIQUE,
			"name" TEXT NOT NULL,
			"owner_user_id" TEXT NOT NULL,
			"address" TEXT,
			"description" TEXT,
			"image_url" TEXT,
			"public_code" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "services" (
			"id" TEXT PRIMARY KEY,
			"shop_id" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"price" NUMERIC NOT NULL,
			"duration" INTEGER NOT NULL,
			"display_order" INTEGER DEFAULT 0,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "staff" (
			"id" TEXT PRIMARY KEY,
			"shop_id" TEXT NOT NULL,
			"user_id" TEXT,
			"full_name" TEXT NOT NULL,
			"avatar_url" TEXT,
			"display_order" INTEGER DEFAULT 0,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "working_hours" (
			"id" TEXT PRIMARY KEY,
			"staff_id" TEXT NOT NULL,
			"weekday" INTEGER NOT NULL,
			"start_time" TEXT NOT NULL DEFAULT '09:00',
			"end_time" TEXT NOT NULL DEFAULT '21:00',
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			UNIQUE ("staff_id", "weekday")
		)`,
		`CREATE TABLE IF NOT EXISTS "appointments" (
			"id" TEXT PRIMARY KEY,
			"shop_id" TEXT NOT NULL,
			"staff_id" TEXT NOT NULL,
			"service_id" TEXT NOT NULL,
			"start_time" DATETIME NOT NULL,
			"end_time" DATETIME NOT NULL,
			"status" TEXT NOT NULL DEFAULT 'pending',
			"created_by_user_id" TEXT,
			"customer_name" TEXT,
			"customer_phone" TEXT,
			"reminder_sent_at" DATETIME,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shops_public_code ON "shops"("public_code") WHERE "public_code" <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_staff_start ON "appointments"("staff_id", "start_time")`,
		`CREATE TABLE IF NOT EXISTS "notifications" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"title" TEXT NOT NULL,
			"message" TEXT,
			"link" TEXT,
			"is_read" INTEGER DEFAULT 0,
			"created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "reminder_logs" (
			"id" TEXT PRIMARY KEY,
			"shop_id" TEXT NOT NULL,
			"appointment_id" TEXT NOT NULL,
			"type" TEXT,
			"phone" TEXT,
			"message" TEXT,
			"status" TEXT,
			"error_message" TEXT,
			"channel" TEXT,
			"sent_at" DATETIME,
			"created_at" DATETIME
		)`,
	}
	for _, ddl := range tables {
		if err := db.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}
