package database

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Benru1503/kazzaz-hours-log/models"
)

var DB *gorm.DB

func Init(dsn string, log *zap.Logger) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	// Auto migrate the schema
	err = DB.AutoMigrate(&models.User{}, &models.Shift{}, &models.ManualLog{}, &models.Invite{})
	if err != nil {
		return err
	}

	// One active shift per user, enforced where the rows live. CheckIn's
	// precondition read stays, but a lost race now surfaces as a unique
	// violation instead of a second active shift.
	err = DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active_per_user
		 ON shifts (user_id) WHERE status = 'active' AND deleted_at IS NULL`,
	).Error
	if err != nil {
		return err
	}

	// Seed default admin if not exists
	if err := seedDefaultAdmin(log); err != nil {
		return err
	}

	return nil
}

func seedDefaultAdmin(log *zap.Logger) error {
	var count int64
	DB.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:           "admin",
		FullName:           "Administrator",
		PasswordHash:       string(hashedPassword),
		Role:               models.RoleAdmin,
		MustChangePassword: true,
	}

	result := DB.Create(&admin)
	if result.Error != nil {
		return result.Error
	}

	log.Info("default admin user created", zap.String("username", "admin"))
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
