// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package tz pins the process time zone. The bot treats user supplied dates
// and times as local to a single office zone.
package tz

import (
	"fmt"
	"os"
	"time"

	// Lambda base images do not ship zoneinfo.
	_ "time/tzdata"
)

// DefaultZone is the zone requests are interpreted in unless configured otherwise.
const DefaultZone = "America/New_York"

// Apply loads name and installs it as time.Local and TZ for the whole process.
func Apply(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	if err := os.Setenv("TZ", name); err != nil {
		return nil, fmt.Errorf("set TZ: %w", err)
	}
	time.Local = loc
	return loc, nil
}
