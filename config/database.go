package config

import (
	"fmt"
	"log"
	"time"

	"barberbook-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB(dsn string) {
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=barberbook port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		panic("Failed to connect database")
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	DB = db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Shop{},
		&models.Service{},
		&models.Staff{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.Notification{},
		&models.ReminderLog{},
	); err != nil {
		return err
	}
	return addBookingExclusion(db)
}

// addBookingExclusion makes postgres reject two active appointments of one
// staff member whose [start, end) ranges intersect (SQLSTATE 23P01).
func addBookingExclusion(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist;`).Error; err != nil {
		return fmt.Errorf("failed to enable btree_gist extension: %w", err)
	}
	if err := db.Exec(`
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap') THEN
    ALTER TABLE appointments
      ADD CONSTRAINT appointments_no_overlap
      EXCLUDE USING gist (
        staff_id WITH =,
        tstzrange(start_time, end_time, '[)') WITH &&
      ) WHERE (status IN ('pending', 'confirmed'));
  END IF;
END $$;`).Error; err != nil {
		return fmt.Errorf("failed to add appointments_no_overlap: %w", err)
	}
	log.Println("Booking exclusion constraint in place")
	return nil
}
