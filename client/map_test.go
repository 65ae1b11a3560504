package client

import (
	"testing"

	"cleancity/models"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMarkersSkipsUnlocatedReports(t *testing.T) {
	reports := []models.Report{
		{Seq: 1, Category: "Pothole", Status: models.StatusReceived,
			Location: &models.LatLng{Lat: 12.9, Lng: 77.6}, Upvotes: 2},
		{Seq: 2, Category: "Garbage", Status: models.StatusResolved},
		{Seq: 3, Category: "Streetlight", Status: models.StatusInProgress,
			Location: &models.LatLng{Lat: 13.1, Lng: 77.4}},
	}

	markers := BuildMarkers(reports)
	require.Len(t, markers, 2)
	assert.Equal(t, int64(1), markers[0].ID)
	assert.Equal(t, 2, markers[0].Upvotes)
	assert.Equal(t, int64(3), markers[1].ID)
}

func TestFitBounds(t *testing.T) {
	markers := []Marker{
		{Lat: 12.9, Lng: 77.6},
		{Lat: 13.1, Lng: 77.4},
	}

	rect, ok := FitBounds(markers)
	require.True(t, ok)
	assert.True(t, rect.ContainsLatLng(s2.LatLngFromDegrees(12.9, 77.6)))
	assert.True(t, rect.ContainsLatLng(s2.LatLngFromDegrees(13.1, 77.4)))
	assert.False(t, rect.ContainsLatLng(s2.LatLngFromDegrees(20.0, 80.0)))
}

func TestFitBoundsEmpty(t *testing.T) {
	_, ok := FitBounds(nil)
	assert.False(t, ok)
}

func TestMapCenterFallsBackToDefault(t *testing.T) {
	_, c := newTestClient(t)
	state := NewAppState(c, nil, nil, nil)

	assert.Equal(t, DefaultMapCenter, state.MapCenter())
}

func TestMapCenterUsesLocation(t *testing.T) {
	_, c := newTestClient(t)
	state := NewAppState(c, nil, &fakeLocator{loc: &models.LatLng{Lat: 12.9, Lng: 77.6}}, nil)
	state.RefreshLocation()

	center := state.MapCenter()
	assert.Equal(t, 12.9, center.Lat)
	assert.Equal(t, 77.6, center.Lng)
}

func TestMapMarkersFromSnapshot(t *testing.T) {
	_, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)
	_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.NoError(t, err)

	markers := state.MapMarkers()
	require.Len(t, markers, 1)
	assert.Equal(t, 12.9, markers[0].Lat)
	assert.Equal(t, models.StatusReceived, markers[0].Status)
}
