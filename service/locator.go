package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/reliefworks/floodscan/config"
	"github.com/reliefworks/floodscan/model"

	log "github.com/sirupsen/logrus"
)

// locateTimeout bounds the lookup the same way the device geolocation
// query was bounded: ~8 seconds, then "no location".
const locateTimeout = 8 * time.Second

type Locator struct {
	config     config.LocationConfig
	HTTPClient *http.Client
}

func NewLocator(cfg config.Config) *Locator {
	return &Locator{
		config:     cfg.Location,
		HTTPClient: http.DefaultClient,
	}
}

type geoIPResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locate returns the best-effort location for an analysis request, or nil.
// Absence of a location is a valid input to the assessment, never an error,
// so every failure path here degrades to nil with a warning.
func (l *Locator) Locate(ctx context.Context) *model.GeoPoint {
	if l.config.Fixed {
		return &model.GeoPoint{Latitude: l.config.Latitude, Longitude: l.config.Longitude}
	}
	if l.config.GeoIPURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.config.GeoIPURL, nil)
	if err != nil {
		log.Warnf("building geoip request: %v", err)
		return nil
	}
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		log.Warnf("geoip lookup failed, proceeding without location: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		log.Warnf("geoip lookup returned status %d, proceeding without location", resp.StatusCode)
		return nil
	}

	var geo geoIPResponse
	if err := json.Unmarshal(body, &geo); err != nil {
		log.Warnf("geoip reply unreadable, proceeding without location: %v", err)
		return nil
	}
	if geo.Latitude == 0 && geo.Longitude == 0 {
		return nil
	}
	return &model.GeoPoint{Latitude: geo.Latitude, Longitude: geo.Longitude}
}
