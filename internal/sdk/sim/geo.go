package sim

import (
	"fmt"
	"math"

	"github.com/arko-chat/geobridge/internal/sdk"
)

const earthRadius = 6371000.0

// distance is the great-circle distance in meters.
func distance(a, b sdk.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(h))
}

// interpolate walks the straight line from a to b; t runs 0..1.
func interpolate(a, b sdk.Coordinate, t float64) sdk.Coordinate {
	return sdk.Coordinate{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
}

// speeds in m/s
var speeds = map[sdk.RouteMode]float64{
	sdk.RouteModeFoot:      1.4,
	sdk.RouteModeBike:      4.5,
	sdk.RouteModeCar:       13.4,
	sdk.RouteModeTruck:     11.0,
	sdk.RouteModeMotorbike: 15.0,
}

// detour approximates road distance from the straight line.
const detour = 1.3

const (
	feetPerMeter  = 3.28084
	metersPerMile = 1609.344
	metersPerKm   = 1000.0
	secondsPerMin = 60.0
)

func distanceRecord(meters float64, units sdk.RouteUnits) sdk.Record {
	if units == sdk.UnitsMetric {
		return sdk.Record{
			"value": math.Round(meters),
			"text":  fmt.Sprintf("%.1f km", meters/metersPerKm),
		}
	}
	return sdk.Record{
		"value": math.Round(meters * feetPerMeter),
		"text":  fmt.Sprintf("%.1f mi", meters/metersPerMile),
	}
}

func durationRecord(meters float64, mode sdk.RouteMode) sdk.Record {
	speed, ok := speeds[mode]
	if !ok {
		speed = speeds[sdk.RouteModeCar]
	}
	minutes := math.Round(meters / speed / secondsPerMin)
	return sdk.Record{
		"value": minutes,
		"text":  fmt.Sprintf("%d mins", int(minutes)),
	}
}

// route estimates one mode's leg between two points.
func route(from, to sdk.Coordinate, mode sdk.RouteMode, units sdk.RouteUnits) sdk.Record {
	meters := distance(from, to) * detour
	return sdk.Record{
		"distance": distanceRecord(meters, units),
		"duration": durationRecord(meters, mode),
	}
}
