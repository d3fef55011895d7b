package entities

import (
	"time"
)

type SettingCategory string

// Known setting categories.
const (
	SettingCategoryGeneral    SettingCategory = "general"
	SettingCategoryGrabbing   SettingCategory = "grabbing"
	SettingCategoryFields     SettingCategory = "fields"
	SettingCategoryImages     SettingCategory = "images"
	SettingCategoryBlacklist  SettingCategory = "blacklist"
	SettingCategoryCategories SettingCategory = "categories"
)

// ParserSetting stores one category of engine configuration as a JSON blob.
// The settingsstore package decodes blobs into typed, validated structs;
// raw maps never cross package boundaries.
type ParserSetting struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Category  SettingCategory `gorm:"uniqueIndex;size:100" json:"category"`
	Config    string          `gorm:"type:text" json:"config"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ParserSetting) TableName() string {
	return "parser_settings"
}
