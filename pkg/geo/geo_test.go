package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	paris := Position{Lat: 48.8566, Lon: 2.3522}
	lyon := Position{Lat: 45.7640, Lon: 4.8357}

	assert.InDelta(t, 392, DistanceKm(paris, lyon), 3)
	assert.InDelta(t, 0, DistanceKm(paris, paris), 1e-9)
	assert.InDelta(t, DistanceKm(paris, lyon), DistanceKm(lyon, paris), 1e-9)
}

func TestValid(t *testing.T) {
	assert.True(t, Position{Lat: 45, Lon: 4}.Valid())
	assert.False(t, Position{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Position{Lat: 0, Lon: -181}.Valid())
}

func TestBoundingBox(t *testing.T) {
	paris := Position{Lat: 48.8566, Lon: 2.3522}
	box := BoundingBox(paris, 10)

	assert.True(t, box.Contains(paris))
	assert.True(t, box.Contains(Position{Lat: 48.8566, Lon: 2.4700}), "about 8.6 km east")
	assert.True(t, box.Contains(Position{Lat: 48.9350, Lon: 2.3522}), "about 8.7 km north")
	assert.False(t, box.Contains(Position{Lat: 45.7640, Lon: 4.8357}))

	polar := BoundingBox(Position{Lat: 89.99, Lon: 0}, 50)
	assert.Equal(t, 90.0, polar.MaxLat)
	assert.Equal(t, -180.0, polar.MinLon)
	assert.Equal(t, 180.0, polar.MaxLon)
}
