// Package config loads application settings from environment variables
// (populated by the .env file in main).
package config

import (
	"errors"
	"os"
)

// Config holds everything needed to talk to the Airtable base.
type Config struct {
	APIKey string
	BaseID string

	WinesTable     string
	ZonesTable     string
	ProducersTable string
	VenuesTable    string

	// View restricts the wine fetch to a named Airtable view. Optional.
	View string
}

// LoadConfig reads settings from the environment. The API key and base
// id are mandatory; table names fall back to the defaults used by the
// production base.
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("AIRTABLE_API_KEY")
	if apiKey == "" {
		return nil, errors.New("AIRTABLE_API_KEY environment variable not set")
	}

	baseID := os.Getenv("AIRTABLE_BASE_ID")
	if baseID == "" {
		return nil, errors.New("AIRTABLE_BASE_ID environment variable not set")
	}

	return &Config{
		APIKey:         apiKey,
		BaseID:         baseID,
		WinesTable:     getenvDefault("AIRTABLE_WINES_TABLE", "Vini"),
		ZonesTable:     getenvDefault("AIRTABLE_ZONES_TABLE", "Zone"),
		ProducersTable: getenvDefault("AIRTABLE_PRODUCERS_TABLE", "Produttori"),
		VenuesTable:    getenvDefault("AIRTABLE_VENUES_TABLE", "Enoteche"),
		View:           os.Getenv("AIRTABLE_WINES_VIEW"),
	}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
