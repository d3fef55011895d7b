// Package settingsstore persists per-category parser settings as JSON
// documents and hands them out as typed, validated structs.
//
// Each category is stored as one row; unknown or corrupt rows fall back to
// the category defaults rather than failing the caller.
package settingsstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// SettingsStore loads and saves parser settings.
type SettingsStore struct {
	db *gorm.DB
}

// New creates a settings store.
func New(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// load reads the raw JSON document for a category into out. Missing or
// unreadable rows leave out untouched and return false.
func (s *SettingsStore) load(category entities.SettingCategory, out any) bool {
	var row entities.ParserSetting
	err := s.db.Where("category = ?", category).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if err != nil {
		log.Printf("Settings: failed to load %s settings: %v", category, err)
		return false
	}
	if err := json.Unmarshal([]byte(row.Config), out); err != nil {
		log.Printf("Settings: corrupt %s settings document, using defaults: %v", category, err)
		return false
	}
	return true
}

// save validates and upserts the JSON document for a category.
func (s *SettingsStore) save(category entities.SettingCategory, cfg interface{ Validate() error }) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid %s settings: %w", category, err)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode %s settings: %w", category, err)
	}

	var row entities.ParserSetting
	err = s.db.Where("category = ?", category).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&entities.ParserSetting{
			Category: category,
			Config:   string(raw),
		}).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&row).Update("config", string(raw)).Error
}

// General returns the general settings, falling back to defaults.
func (s *SettingsStore) General() GeneralConfig {
	cfg := DefaultGeneral()
	s.load(entities.SettingCategoryGeneral, &cfg)
	return cfg
}

// SaveGeneral validates and persists the general settings.
func (s *SettingsStore) SaveGeneral(cfg GeneralConfig) error {
	return s.save(entities.SettingCategoryGeneral, &cfg)
}

// Grabbing returns the grabbing settings, falling back to defaults.
func (s *SettingsStore) Grabbing() GrabbingConfig {
	cfg := DefaultGrabbing()
	s.load(entities.SettingCategoryGrabbing, &cfg)
	return cfg
}

// SaveGrabbing validates and persists the grabbing settings.
func (s *SettingsStore) SaveGrabbing(cfg GrabbingConfig) error {
	return s.save(entities.SettingCategoryGrabbing, &cfg)
}

// Fields returns the field templates, falling back to defaults.
func (s *SettingsStore) Fields() FieldsConfig {
	cfg := DefaultFields()
	s.load(entities.SettingCategoryFields, &cfg)
	return cfg
}

// SaveFields validates and persists the field templates.
func (s *SettingsStore) SaveFields(cfg FieldsConfig) error {
	return s.save(entities.SettingCategoryFields, &cfg)
}

// Images returns the image settings, falling back to defaults.
func (s *SettingsStore) Images() ImagesConfig {
	cfg := DefaultImages()
	s.load(entities.SettingCategoryImages, &cfg)
	return cfg
}

// SaveImages validates and persists the image settings.
func (s *SettingsStore) SaveImages(cfg ImagesConfig) error {
	return s.save(entities.SettingCategoryImages, &cfg)
}

// Blacklist returns the blacklist, falling back to defaults.
func (s *SettingsStore) Blacklist() BlacklistConfig {
	cfg := DefaultBlacklist()
	s.load(entities.SettingCategoryBlacklist, &cfg)
	return cfg
}

// SaveBlacklist validates and persists the blacklist.
func (s *SettingsStore) SaveBlacklist(cfg BlacklistConfig) error {
	return s.save(entities.SettingCategoryBlacklist, &cfg)
}

// Categories returns the category mappings, falling back to defaults.
func (s *SettingsStore) Categories() CategoriesConfig {
	cfg := DefaultCategories()
	s.load(entities.SettingCategoryCategories, &cfg)
	return cfg
}

// SaveCategories validates and persists the category mappings.
func (s *SettingsStore) SaveCategories(cfg CategoriesConfig) error {
	return s.save(entities.SettingCategoryCategories, &cfg)
}
