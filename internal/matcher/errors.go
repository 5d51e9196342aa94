// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"fmt"

	"github.com/airwave/airwave/internal/apperr"
)

var errInvalidThresholds = fmt.Errorf("thresholds must satisfy 0 <= review <= auto <= 1: %w", apperr.ErrValidation)
