package initializers

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/models"
)

func SyncDatabase(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to sync database: %w", err)
	}
	log.Info("Database synced successfully.")
	return nil
}
