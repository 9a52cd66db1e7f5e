package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// GeocodeResult is the coordinate pair resolved for an address.
type GeocodeResult struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var geocodeClient = &http.Client{Timeout: 5 * time.Second}

// GeocodeAddress resolves an address to coordinates via the external
// geocoding service. Only consulted when a business is created or updated
// without explicit coordinates; failures are for the caller to log, not to
// surface.
func GeocodeAddress(address string) (*GeocodeResult, error) {
	base := os.Getenv("GEOCODE_URL")
	if base == "" {
		return nil, fmt.Errorf("GEOCODE_URL not configured")
	}

	resp, err := geocodeClient.Get(base + "?address=" + url.QueryEscape(address))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	var result GeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
