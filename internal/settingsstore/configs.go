package settingsstore

import (
	"fmt"
)

// GeneralConfig holds provider access settings.
type GeneralConfig struct {
	UserAgent    string `json:"user_agent"`
	ProxyEnabled bool   `json:"proxy_enabled"`
	ProxyAddress string `json:"proxy_address"`
	KodikAPIKey  string `json:"kodik_api_key"`
}

// Validate checks the general settings for consistency.
func (c *GeneralConfig) Validate() error {
	if c.ProxyEnabled && c.ProxyAddress == "" {
		return fmt.Errorf("proxy enabled but no proxy address set")
	}
	return nil
}

// GrabbingConfig controls ingestion behaviour: filtering thresholds,
// paging depth, and concurrency.
type GrabbingConfig struct {
	MinScore        float64 `json:"min_score"`
	AllowRestricted bool    `json:"allow_restricted"`
	AllowLowQuality bool    `json:"allow_low_quality"`
	AutoUpdate      bool    `json:"auto_update"`
	DeepSyncPages   int     `json:"deep_sync_pages"`
	PageSize        int     `json:"page_size"`
	Concurrency     int     `json:"concurrency"`
	RequestDelayMS  int     `json:"request_delay_ms"`
	ProgressEvery   int     `json:"progress_every"`
}

// Validate checks the grabbing settings for consistency.
func (c *GrabbingConfig) Validate() error {
	if c.MinScore < 0 || c.MinScore > 10 {
		return fmt.Errorf("min_score must be within [0, 10], got %v", c.MinScore)
	}
	if c.DeepSyncPages < 1 {
		return fmt.Errorf("deep_sync_pages must be positive, got %d", c.DeepSyncPages)
	}
	if c.PageSize < 1 || c.PageSize > 50 {
		return fmt.Errorf("page_size must be within [1, 50], got %d", c.PageSize)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.RequestDelayMS < 0 {
		return fmt.Errorf("request_delay_ms must not be negative, got %d", c.RequestDelayMS)
	}
	if c.ProgressEvery < 1 {
		return fmt.Errorf("progress_every must be positive, got %d", c.ProgressEvery)
	}
	return nil
}

// FieldsConfig holds the templates applied to provider titles and
// descriptions during mapping.
type FieldsConfig struct {
	TitleTemplate       string `json:"title_template"`
	DescriptionTemplate string `json:"description_template"`
}

// Validate checks the field templates.
func (c *FieldsConfig) Validate() error {
	return nil
}

// ImagesConfig controls poster localization.
type ImagesConfig struct {
	LocalizeImages bool `json:"localize_images"`
	ForceReprocess bool `json:"force_reprocess"`
}

// Validate checks the image settings.
func (c *ImagesConfig) Validate() error {
	return nil
}

// BlacklistConfig lists provider ids that must never enter the catalog.
type BlacklistConfig struct {
	BannedIDs []string `json:"banned_ids"`
}

// Validate checks the blacklist.
func (c *BlacklistConfig) Validate() error {
	for _, id := range c.BannedIDs {
		if id == "" {
			return fmt.Errorf("banned id list contains an empty entry")
		}
	}
	return nil
}

// CategoriesConfig maps provider genre names to local category names.
type CategoriesConfig struct {
	Mappings map[string]string `json:"mappings"`
}

// Validate checks the category mappings.
func (c *CategoriesConfig) Validate() error {
	return nil
}

// DefaultGeneral returns the general settings used before any are saved.
func DefaultGeneral() GeneralConfig {
	return GeneralConfig{
		UserAgent: "KitsuEngine/2.0",
	}
}

// DefaultGrabbing returns the grabbing settings used before any are saved.
func DefaultGrabbing() GrabbingConfig {
	return GrabbingConfig{
		MinScore:       0,
		AutoUpdate:     true,
		DeepSyncPages:  50,
		PageSize:       50,
		Concurrency:    5,
		RequestDelayMS: 200,
		ProgressEvery:  5,
	}
}

// DefaultFields returns the field templates used before any are saved.
func DefaultFields() FieldsConfig {
	return FieldsConfig{
		TitleTemplate:       "{title}",
		DescriptionTemplate: "{description}",
	}
}

// DefaultImages returns the image settings used before any are saved.
func DefaultImages() ImagesConfig {
	return ImagesConfig{LocalizeImages: true}
}

// DefaultBlacklist returns the blacklist used before any are saved.
func DefaultBlacklist() BlacklistConfig {
	return BlacklistConfig{BannedIDs: []string{}}
}

// DefaultCategories returns the category mappings used before any are saved.
func DefaultCategories() CategoriesConfig {
	return CategoriesConfig{Mappings: map[string]string{}}
}
