package kernel

import (
	"errors"
	"fmt"
	"math"

	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0

	earthRadiusKm = 6371.0088
)

var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is a WGS84 point. Pickup and delivery addresses, as well as the
// last reported position of a delivery partner, are expressed as Locations.
//
// The zero value is invalid; use NewLocation.
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewLocation validates the coordinate ranges and returns a Location.
func NewLocation(lat, lon float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Lon() float64 {
	return l.lon
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lon)
}

// DistanceKm returns the great-circle (haversine) distance between two locations.
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1, lat2 := toRadians(l.lat), toRadians(other.lat)
	dLat := lat2 - lat1
	dLon := toRadians(other.lon - l.lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a))), nil
}

// BoundingBox is a lat/lon rectangle used by repositories as a cheap prefilter
// before the exact distance check.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether l lies inside the box, edges included.
func (b BoundingBox) Contains(l Location) bool {
	return l.lat >= b.MinLat && l.lat <= b.MaxLat && l.lon >= b.MinLon && l.lon <= b.MaxLon
}

// BoundingBox returns a rectangle that contains every point within radiusKm of l.
// Near the poles the longitude span is widened to the full range.
func (l Location) BoundingBox(radiusKm float64) BoundingBox {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	box := BoundingBox{
		MinLat: math.Max(LatitudeMin, l.lat-dLat),
		MaxLat: math.Min(LatitudeMax, l.lat+dLat),
		MinLon: LongitudeMin,
		MaxLon: LongitudeMax,
	}

	cosLat := math.Cos(toRadians(l.lat))
	if cosLat > 1e-6 {
		dLon := dLat / cosLat
		if dLon < 180 {
			box.MinLon = math.Max(LongitudeMin, l.lon-dLon)
			box.MaxLon = math.Min(LongitudeMax, l.lon+dLon)
		}
	}

	return box
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < LongitudeMin || lon > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lon", lon, LongitudeMin, LongitudeMax)
	}

	l.lon = lon
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
