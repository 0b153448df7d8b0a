package db

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant/internal/domain/model"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(log *logrus.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	// DATABASE_URL があれば最優先で使う
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		log.Info("connecting to database via DATABASE_URL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	name := getenv("POSTGRES_DB", "app")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, ssl,
	)

	log.WithFields(logrus.Fields{"host": host, "port": port, "db": name}).Info("connecting to database")
	return gorm.Open(postgres.Open(dsn), cfg)
}

// Models はマイグレーション対象
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Dish{},
		&model.Order{},
		&model.OrderItem{},
		&model.Bill{},
		&model.DeliveryDriver{},
		&model.DeliveryOrder{},
		&model.CreditUser{},
		&model.CreditOrder{},
		&model.CreditTransaction{},
		&model.Coupon{},
		&model.Notification{},
		&model.AuditLog{},
		&model.Floor{},
		&model.DiningTable{},
		&model.Chair{},
		&model.ChairBooking{},
		&model.NatureGroup{},
		&model.MainGroup{},
		&model.Ledger{},
		&model.LedgerTransaction{},
		&model.IncomeStatement{},
		&model.BalanceSheet{},
		&model.MessType{},
		&model.Menu{},
		&model.MenuItem{},
		&model.Mess{},
		&model.MessTransaction{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
