package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
)

// SettingsController exposes the per-category parser settings.
type SettingsController struct {
	store *settingsstore.SettingsStore
}

// NewSettingsController creates a settings controller.
func NewSettingsController(store *settingsstore.SettingsStore) *SettingsController {
	return &SettingsController{store: store}
}

// Get returns the effective settings for one category, defaults included.
func (s *SettingsController) Get(c *gin.Context) {
	switch entities.SettingCategory(c.Param("category")) {
	case entities.SettingCategoryGeneral:
		c.JSON(200, s.store.General())
	case entities.SettingCategoryGrabbing:
		c.JSON(200, s.store.Grabbing())
	case entities.SettingCategoryFields:
		c.JSON(200, s.store.Fields())
	case entities.SettingCategoryImages:
		c.JSON(200, s.store.Images())
	case entities.SettingCategoryBlacklist:
		c.JSON(200, s.store.Blacklist())
	case entities.SettingCategoryCategories:
		c.JSON(200, s.store.Categories())
	default:
		respondNotFound(c, "settings category")
	}
}

// Update validates and persists the settings for one category. An invalid
// document is rejected whole; nothing is partially applied.
func (s *SettingsController) Update(c *gin.Context) {
	var err error
	switch entities.SettingCategory(c.Param("category")) {
	case entities.SettingCategoryGeneral:
		var cfg settingsstore.GeneralConfig
		if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
			respondBadRequest(c, "invalid settings document")
			return
		}
		err = s.store.SaveGeneral(cfg)
	case entities.SettingCategoryGrabbing:
		var cfg settingsstore.GrabbingConfig
		if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
			respondBadRequest(c, "invalid settings document")
			return
		}
		err = s.store.SaveGrabbing(cfg)
	case entities.SettingCategoryFields:
		var cfg settingsstore.FieldsConfig
		if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
			respondBadRequest(c, "invalid settings document")
			return
		}
		err = s.store.SaveFields(cfg)
	case entities.SettingCategoryImages:
		var cfg settingsstore.ImagesConfig
		if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
			respondBadRequest(c, "invalid settings document")
			return
		}
		err = s.store.SaveImages(cfg)
	case entities.SettingCategoryBlacklist:
		var cfg settingsstore.BlacklistConfig
		if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
			respondBadRequest(c, "invalid settings document")
			return
		}
		err = s.store.SaveBlacklist(cfg)
	case entities.SettingCategoryCategories:
		var cfg settingsstore.CategoriesConfig
		if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
			respondBadRequest(c, "invalid settings document")
			return
		}
		err = s.store.SaveCategories(cfg)
	default:
		respondNotFound(c, "settings category")
		return
	}

	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondSuccess(c, "settings saved")
}
