package http

import (
	"github.com/ekotlyar/kitsu-engine/internal/auth"
	"github.com/ekotlyar/kitsu-engine/internal/broadcast"
	"github.com/ekotlyar/kitsu-engine/internal/database"
	"github.com/ekotlyar/kitsu-engine/internal/database/catalog"
	"github.com/ekotlyar/kitsu-engine/internal/database/conflicts"
	"github.com/ekotlyar/kitsu-engine/internal/database/jobs"
	"github.com/ekotlyar/kitsu-engine/internal/database/schedules"
	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
	"github.com/ekotlyar/kitsu-engine/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Jobs      *jobs.Repository
	Catalog   *catalog.Repository
	Conflicts *conflicts.Repository
	Schedules *schedules.Repository
	Settings  *settingsstore.SettingsStore

	// Background execution
	Dispatcher tasks.Dispatcher

	// Live progress
	Hub         *broadcast.Hub
	TokenIssuer *auth.Issuer

	// Upstream access for live search and on-demand fetch
	Metadata providers.Provider
	Delivery providers.Provider

	// Media serving
	MediaRoot string

	// Application info
	Version string
}
