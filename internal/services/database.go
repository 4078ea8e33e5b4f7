package services

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dulili/internal/models"
)

// InitDB initializes the database connection with connection pooling
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
	return db, nil
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Building{},
		&models.Lot{},
		&models.User{},
		&models.Levy{},
		&models.LevyPayment{},
		&models.LevyPaymentAllocation{},
		&models.PaymentPlan{},
		&models.RecoveryAction{},
		&models.LevySchedule{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
	)
	if err != nil {
		return err
	}

	// One in-flight payment plan per user. The application also checks
	// before creating, but the check-then-create sequence can race; the
	// partial unique index is what actually closes it.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_plans_one_in_flight
		ON payment_plans (user_id)
		WHERE status IN ('pending', 'approved', 'active') AND deleted_at IS NULL`).Error
	if err != nil {
		return err
	}

	log.Println("Database migrations completed")
	return nil
}
