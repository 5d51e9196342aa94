// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"time"

	"github.com/airwave/airwave/internal/audit"
	"github.com/airwave/airwave/internal/bridge"
	"github.com/airwave/airwave/internal/database"
)

// DefaultCooldown is Skip's resurfacing horizon, chosen to match a
// broadcast station's weekly rotation.
const DefaultCooldown = 7 * 24 * time.Hour

// Discovery owns the Discovery Queue and its operator actions.
type Discovery struct {
	db     *database.DB
	bridge *bridge.Bridge
	logger *audit.Logger
}

// New constructs a Discovery.
func New(db *database.DB, br *bridge.Bridge, logger *audit.Logger) *Discovery {
	return &Discovery{db: db, bridge: br, logger: logger}
}
