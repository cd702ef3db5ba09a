package migrations

import (
	"errors"
	"fmt"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/database"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/repository"
	"hospitality_pos/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultGSTPolicy is what a fresh install bills with.
func DefaultGSTPolicy() billing.GSTPolicy {
	return billing.NewGSTPolicy(true, map[billing.BusinessUnit]billing.UnitGST{
		billing.UnitCafe:   {Enabled: true, Percent: 5},
		billing.UnitBar:    {Enabled: true, Percent: 18},
		billing.UnitHotel:  {Enabled: true, Percent: 12},
		billing.UnitGarden: {Enabled: true, Percent: 18},
	})
}

// RunMigrations migrates the schema and creates default settings. It is safe
// to run on every start.
func RunMigrations(db *gorm.DB, deletePassword string, log *zap.Logger) error {
	log.Info("running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultSettings(db, deletePassword, log); err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// createDefaultSettings writes the settings row on first run only; existing
// GST choices and password are left alone.
func createDefaultSettings(db *gorm.DB, deletePassword string, log *zap.Logger) error {
	financialRepo := repository.NewFinancialRepository(db)

	_, err := financialRepo.GetSettings()
	if err == nil {
		log.Debug("business settings already exist")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	settings := &models.BusinessSettings{}
	settings.ApplyPolicy(DefaultGSTPolicy())
	if deletePassword != "" {
		hash, err := services.HashDeletePassword(deletePassword)
		if err != nil {
			return err
		}
		settings.DeletePasswordHash = hash
	} else {
		log.Warn("no delete password configured; password-gated actions will be refused")
	}

	if err := financialRepo.SaveSettings(settings); err != nil {
		return err
	}
	log.Info("default business settings created")
	return nil
}

// SeedSampleData adds a starter floor plan and menu when there are no tables
// yet. Measured bar items are priced per BaseMeasurement.
func SeedSampleData(db *gorm.DB, log *zap.Logger) error {
	tableRepo := repository.NewTableRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)

	existing, err := tableRepo.GetAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("sample data skipped; tables already exist", zap.Int("tables", len(existing)))
		return nil
	}

	tables := []models.Table{
		{Number: "C1", BusinessUnit: billing.UnitCafe, Capacity: 2},
		{Number: "C2", BusinessUnit: billing.UnitCafe, Capacity: 4},
		{Number: "B1", BusinessUnit: billing.UnitBar, Capacity: 4},
		{Number: "B2", BusinessUnit: billing.UnitBar, Capacity: 6},
		{Number: "G1", BusinessUnit: billing.UnitGarden, Capacity: 8},
		{Number: "101", BusinessUnit: billing.UnitHotel, Capacity: 2},
	}
	for i := range tables {
		tables[i].Status = models.TableAvailable
		if err := tableRepo.Create(&tables[i]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", tables[i].Number, err)
		}
	}

	menu := []models.MenuItem{
		{Name: "Cappuccino", Category: "Coffee", Price: billing.FromRupees(180), BusinessUnit: billing.UnitCafe},
		{Name: "Club Sandwich", Category: "Snacks", Price: billing.FromRupees(320), BusinessUnit: billing.UnitCafe},
		{Name: "Masala Fries", Category: "Snacks", Price: billing.FromRupees(220), BusinessUnit: billing.UnitGarden},
		{Name: "Veg Thali", Category: "Mains", Price: billing.FromRupees(450), BusinessUnit: billing.UnitGarden},
		{Name: "Draught Beer", Category: "Beer", Price: billing.FromRupees(400), BusinessUnit: billing.UnitBar},
		{Name: "Single Malt", Category: "Whisky", Price: billing.FromRupees(900), BusinessUnit: billing.UnitBar, Measurement: "30ml", BaseMeasurement: "60ml"},
		{Name: "House Red", Category: "Wine", Price: billing.FromRupees(2400), BusinessUnit: billing.UnitBar, Measurement: "150ml", BaseMeasurement: "750ml"},
		{Name: "Room Breakfast", Category: "Room Service", Price: billing.FromRupees(600), BusinessUnit: billing.UnitHotel},
	}
	for i := range menu {
		menu[i].Available = true
		if err := menuRepo.Create(&menu[i]); err != nil {
			return fmt.Errorf("failed to create menu item %s: %w", menu[i].Name, err)
		}
	}

	log.Info("sample data created", zap.Int("tables", len(tables)), zap.Int("menu_items", len(menu)))
	return nil
}
