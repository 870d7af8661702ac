package handlers

import (
	"bytes"
	"encoding/json"

	"secondserving/internal/models"
)

// geoInput accepts a GeoJSON point, a bare [longitude, latitude] array, or the
// {latitude, longitude} object the web forms send.
type geoInput struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
}

func (g *geoInput) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &g.Coordinates)
	}
	type plain geoInput
	return json.Unmarshal(data, (*plain)(g))
}

func (g *geoInput) point() *models.GeoPoint {
	if g == nil {
		return nil
	}
	var p models.GeoPoint
	switch {
	case g.Latitude != nil && g.Longitude != nil:
		p = models.NewPoint(*g.Longitude, *g.Latitude)
	case len(g.Coordinates) == 2:
		p = models.NewPoint(g.Coordinates[0], g.Coordinates[1])
	default:
		// left invalid so the service names the missing field
		p = models.GeoPoint{Type: "Point"}
	}
	return &p
}

// pickupInput is the donation pickup block; coordinates may take any geoInput
// shape, or latitude/longitude may sit directly on the block.
type pickupInput struct {
	Address     string    `json:"address"`
	Coordinates *geoInput `json:"coordinates"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
}

func (p *pickupInput) point() *models.GeoPoint {
	if p == nil {
		return nil
	}
	if p.Latitude != nil && p.Longitude != nil {
		point := models.NewPoint(*p.Longitude, *p.Latitude)
		return &point
	}
	return p.Coordinates.point()
}
