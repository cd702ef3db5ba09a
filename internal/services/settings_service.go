package services

import (
	"context"
	"errors"
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/models"
	"hospitality_pos/internal/realtime"
	"hospitality_pos/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const gstSettingsCacheKey = "settings:gst"

type SettingsCache interface {
	SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetTempData(ctx context.Context, key string, dest interface{}) error
	DeleteTempData(ctx context.Context, key string) error
}

// GSTSettings is the wire and cache form of a GST policy.
type GSTSettings struct {
	Enabled bool                                     `json:"gst_enabled"`
	Units   map[billing.BusinessUnit]billing.UnitGST `json:"units"`
}

// GSTUpdate changes part of the stored policy. A nil Enabled keeps the global
// gate and units that are not listed keep their settings.
type GSTUpdate struct {
	Enabled *bool                                    `json:"gst_enabled"`
	Units   map[billing.BusinessUnit]billing.UnitGST `json:"units"`
}

func GSTSettingsFromPolicy(p billing.GSTPolicy) GSTSettings {
	units := make(map[billing.BusinessUnit]billing.UnitGST, len(billing.BusinessUnits))
	for _, u := range billing.BusinessUnits {
		units[u] = p.Unit(u)
	}
	return GSTSettings{Enabled: p.Enabled, Units: units}
}

func (g GSTSettings) Policy() billing.GSTPolicy {
	return billing.NewGSTPolicy(g.Enabled, g.Units)
}

type SettingsService interface {
	// GSTPolicy returns the current policy snapshot, from cache when warm.
	GSTPolicy(ctx context.Context) (billing.GSTPolicy, error)
	GetGSTSettings(ctx context.Context) (GSTSettings, error)
	// UpdateGSTSettings merges the update over the stored settings.
	UpdateGSTSettings(ctx context.Context, update GSTUpdate) (GSTSettings, error)
	VerifyDeletePassword(password string) error
}

type settingsService struct {
	repo  repository.FinancialRepository
	cache SettingsCache
	ttl   time.Duration
	notifier
}

func NewSettingsService(repo repository.FinancialRepository, cache SettingsCache, ttl time.Duration, pub ChangePublisher, logger *zap.Logger) SettingsService {
	return &settingsService{
		repo:     repo,
		cache:    cache,
		ttl:      ttl,
		notifier: notifier{pub: pub, logger: logger},
	}
}

func (s *settingsService) GSTPolicy(ctx context.Context) (billing.GSTPolicy, error) {
	if s.cache != nil {
		var cached GSTSettings
		if err := s.cache.GetTempData(ctx, gstSettingsCacheKey, &cached); err == nil {
			return cached.Policy(), nil
		}
	}

	settings, err := s.repo.GetSettings()
	if err != nil {
		return billing.GSTPolicy{}, notFound(err, "business settings", "")
	}
	policy := settings.Policy()

	if s.cache != nil {
		if err := s.cache.SetTempData(ctx, gstSettingsCacheKey, GSTSettingsFromPolicy(policy), s.ttl); err != nil {
			s.logger.Warn("caching gst settings failed", zap.Error(err))
		}
	}
	return policy, nil
}

func (s *settingsService) GetGSTSettings(ctx context.Context) (GSTSettings, error) {
	policy, err := s.GSTPolicy(ctx)
	if err != nil {
		return GSTSettings{}, err
	}
	return GSTSettingsFromPolicy(policy), nil
}

func (s *settingsService) UpdateGSTSettings(ctx context.Context, update GSTUpdate) (GSTSettings, error) {
	for unit, g := range update.Units {
		if !unit.Valid() {
			return GSTSettings{}, invalid("unknown business unit %q", unit)
		}
		if g.Percent < 0 || g.Percent > 100 {
			return GSTSettings{}, invalid("gst percentage for %s must be between 0 and 100", unit)
		}
	}

	settings, err := s.repo.GetSettings()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = &models.BusinessSettings{}
	} else if err != nil {
		return GSTSettings{}, err
	}

	merged := GSTSettingsFromPolicy(settings.Policy())
	if update.Enabled != nil {
		merged.Enabled = *update.Enabled
	}
	for unit, g := range update.Units {
		merged.Units[unit] = g
	}
	settings.ApplyPolicy(merged.Policy())

	if err := s.repo.SaveSettings(settings); err != nil {
		return GSTSettings{}, err
	}
	if s.cache != nil {
		if err := s.cache.DeleteTempData(ctx, gstSettingsCacheKey); err != nil {
			s.logger.Warn("invalidating gst settings cache failed", zap.Error(err))
		}
	}
	s.notify(ctx, realtime.CollectionSettings, realtime.EventUpdate, settings.ID, nil)
	return merged, nil
}

func (s *settingsService) VerifyDeletePassword(password string) error {
	settings, err := s.repo.GetSettings()
	if err != nil {
		return notFound(err, "business settings", "")
	}
	if settings.DeletePasswordHash == "" || password == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(settings.DeletePasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// HashDeletePassword returns the bcrypt hash stored for the delete password.
func HashDeletePassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
