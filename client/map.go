package client

import (
	"cleancity/models"

	"github.com/golang/geo/s2"
)

// DefaultMapCenter is used when no location fix is available.
var DefaultMapCenter = models.LatLng{Lat: 20.5937, Lng: 78.9629}

// Marker is one map pin with the popup data it exposes, including the vote
// counters driving the inline vote buttons.
type Marker struct {
	ID        int64
	Lat       float64
	Lng       float64
	Category  string
	Status    string
	Upvotes   int
	Downvotes int
}

// BuildMarkers rebuilds the full marker set from a report snapshot.
// Reports without a location are skipped. There is no incremental diffing;
// every refresh clears and redraws.
func BuildMarkers(reports []models.Report) []Marker {
	markers := []Marker{}
	for _, r := range reports {
		if r.Location == nil {
			continue
		}
		markers = append(markers, Marker{
			ID:        r.Seq,
			Lat:       r.Location.Lat,
			Lng:       r.Location.Lng,
			Category:  r.Category,
			Status:    r.Status,
			Upvotes:   r.Upvotes,
			Downvotes: r.Downvotes,
		})
	}
	return markers
}

// FitBounds computes the viewport rectangle covering all markers. The
// second return is false when the marker set is empty and the viewport
// should stay where it is.
func FitBounds(markers []Marker) (s2.Rect, bool) {
	if len(markers) == 0 {
		return s2.EmptyRect(), false
	}

	rect := s2.EmptyRect()
	for _, m := range markers {
		rect = rect.AddPoint(s2.LatLngFromDegrees(m.Lat, m.Lng))
	}
	return rect, true
}

// MapMarkers rebuilds the marker set from the current snapshot.
func (s *AppState) MapMarkers() []Marker {
	return BuildMarkers(s.Reports())
}

// MapCenter prefers the user's location, falling back to the default.
func (s *AppState) MapCenter() models.LatLng {
	if loc := s.Location(); loc != nil {
		return *loc
	}
	return DefaultMapCenter
}
