package sim

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arko-chat/geobridge/internal/sdk"
)

const (
	contextRadius = 50_000.0
	reverseRadius = 1_000.0
)

type nativer interface {
	JSON() map[string]any
}

func records[T nativer](items []T) []sdk.Record {
	out := make([]sdk.Record, len(items))
	for i, item := range items {
		out[i] = item.JSON()
	}
	return out
}

// near resolves an optional search origin. A nil origin means the
// device position, which needs location permission.
func (s *SDK) near(origin *sdk.Location) (sdk.Location, sdk.Status) {
	if origin != nil {
		return *origin, s.check(false)
	}
	if st := s.check(true); !st.OK() {
		return sdk.Location{}, st
	}
	loc, _ := s.fix("")
	return loc, sdk.StatusSuccess
}

func (s *SDK) GetContext(cb sdk.ContextCallback) {
	s.async(func() {
		loc, st := s.near(nil)
		if !st.OK() {
			s.fail("getContext", st)
			cb(st, nil, nil)
			return
		}
		cb(sdk.StatusSuccess, &loc, s.contextFor(loc.Coordinate()))
	})
}

func (s *SDK) GetContextForLocation(location sdk.Location, cb sdk.ContextCallback) {
	s.async(func() {
		loc, st := s.near(&location)
		if !st.OK() {
			s.fail("getContext", st)
			cb(st, nil, nil)
			return
		}
		cb(sdk.StatusSuccess, &loc, s.contextFor(loc.Coordinate()))
	})
}

func (s *SDK) contextFor(at sdk.Coordinate) sdk.Record {
	ctx := sdk.Record{
		"geofences": records(s.catalog.Containing(at)),
	}
	if p, ok := s.nearestPlace(at, placeRadius); ok {
		ctx["place"] = p.JSON()
	}
	if a, ok := s.catalog.NearestAddress(at, contextRadius); ok {
		ctx["country"] = sdk.Record{"code": a.CountryCode, "name": a.Country}
		if a.StateCode != "" {
			ctx["state"] = sdk.Record{"code": a.StateCode, "name": a.State}
		}
		if a.PostalCode != "" {
			ctx["postalCode"] = sdk.Record{"code": a.PostalCode}
		}
	}
	return ctx
}

func (s *SDK) SearchPlaces(params sdk.SearchPlacesParams, cb sdk.SearchPlacesCallback) {
	s.async(func() {
		loc, st := s.near(params.Near)
		if !st.OK() {
			s.fail("searchPlaces", st)
			cb(st, nil, nil)
			return
		}
		at := loc.Coordinate()

		var found []Place
		for _, p := range s.catalog.Places {
			if params.Radius > 0 && distance(p.Location, at) > float64(params.Radius) {
				continue
			}
			if len(params.Chains) > 0 && (p.Chain == nil || !slices.Contains(params.Chains, p.Chain.Slug)) {
				continue
			}
			if !chainMetadataMatches(p.Chain, params.ChainMetadata) {
				continue
			}
			if len(params.Categories) > 0 && !slices.ContainsFunc(p.Categories, func(c string) bool {
				return slices.Contains(params.Categories, c)
			}) {
				continue
			}
			if len(params.Groups) > 0 && !slices.Contains(params.Groups, p.Group) {
				continue
			}
			found = append(found, p)
		}
		slices.SortStableFunc(found, func(a, b Place) int {
			return cmp.Compare(distance(a.Location, at), distance(b.Location, at))
		})
		cb(sdk.StatusSuccess, &loc, records(limit(found, params.Limit)))
	})
}

func chainMetadataMatches(chain *Chain, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	if chain == nil {
		return false
	}
	for k, v := range want {
		if chain.Metadata[k] != v {
			return false
		}
	}
	return true
}

func (s *SDK) SearchGeofences(params sdk.SearchGeofencesParams, cb sdk.SearchGeofencesCallback) {
	s.async(func() {
		loc, st := s.near(params.Near)
		if !st.OK() {
			s.fail("searchGeofences", st)
			cb(st, nil, nil)
			return
		}
		at := loc.Coordinate()

		var found []Geofence
		s.catalog.EachGeofence(func(g Geofence) bool {
			if params.Radius > 0 && distance(g.Center, at) > float64(params.Radius) {
				return true
			}
			if len(params.Tags) > 0 && !slices.Contains(params.Tags, g.Tag) {
				return true
			}
			for k, v := range params.Metadata {
				if fmt.Sprint(g.Metadata[k]) != fmt.Sprint(v) {
					return true
				}
			}
			found = append(found, g)
			return true
		})
		slices.SortStableFunc(found, func(a, b Geofence) int {
			return cmp.Compare(distance(a.Center, at), distance(b.Center, at))
		})
		cb(sdk.StatusSuccess, &loc, records(limit(found, params.Limit)))
	})
}

func (s *SDK) SearchPoints(params sdk.SearchPointsParams, cb sdk.SearchPointsCallback) {
	s.async(func() {
		loc, st := s.near(params.Near)
		if !st.OK() {
			s.fail("searchPoints", st)
			cb(st, nil, nil)
			return
		}
		at := loc.Coordinate()

		var found []Point
		for _, p := range s.catalog.Points {
			if params.Radius > 0 && distance(p.Location, at) > float64(params.Radius) {
				continue
			}
			if len(params.Tags) > 0 && !slices.Contains(params.Tags, p.Tag) {
				continue
			}
			found = append(found, p)
		}
		slices.SortStableFunc(found, func(a, b Point) int {
			return cmp.Compare(distance(a.Location, at), distance(b.Location, at))
		})
		cb(sdk.StatusSuccess, &loc, records(limit(found, params.Limit)))
	})
}

func (s *SDK) Autocomplete(params sdk.AutocompleteParams, cb sdk.GeocodeCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("autocomplete", st)
			cb(st, nil)
			return
		}
		at := params.Near.Coordinate()

		var found []Address
		for _, a := range s.catalog.MatchAddresses(params.Query) {
			if len(params.Layers) > 0 && !slices.Contains(params.Layers, a.Layer) {
				continue
			}
			if params.Country != "" && !strings.EqualFold(params.Country, a.CountryCode) {
				continue
			}
			found = append(found, a)
		}
		slices.SortStableFunc(found, func(a, b Address) int {
			return cmp.Compare(distance(a.Location, at), distance(b.Location, at))
		})
		cb(sdk.StatusSuccess, records(limit(found, params.Limit)))
	})
}

// Geocode answers forward geocoding from the catalog. Results are cached
// per normalized query.
func (s *SDK) Geocode(query string, cb sdk.GeocodeCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("geocode", st)
			cb(st, nil)
			return
		}
		key := strings.ToLower(strings.TrimSpace(query))
		if key == "" {
			cb(sdk.StatusErrorBadRequest, nil)
			return
		}
		addresses, err := s.geocodes.Get(key, func() ([]sdk.Record, error) {
			return records(s.catalog.MatchAddresses(key)), nil
		})
		if err != nil {
			s.logger.Error("geocode", "query", query, "err", err)
			cb(sdk.StatusErrorServer, nil)
			return
		}
		cb(sdk.StatusSuccess, addresses)
	})
}

func (s *SDK) ReverseGeocode(cb sdk.GeocodeCallback) {
	s.async(func() {
		loc, st := s.near(nil)
		if !st.OK() {
			s.fail("reverseGeocode", st)
			cb(st, nil)
			return
		}
		cb(sdk.StatusSuccess, s.reverseGeocode(loc.Coordinate()))
	})
}

func (s *SDK) ReverseGeocodeLocation(location sdk.Location, cb sdk.GeocodeCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("reverseGeocode", st)
			cb(st, nil)
			return
		}
		cb(sdk.StatusSuccess, s.reverseGeocode(location.Coordinate()))
	})
}

// reverseGeocode looks up the closest address, keyed on coordinates
// rounded to about ten meters.
func (s *SDK) reverseGeocode(at sdk.Coordinate) []sdk.Record {
	key := fmt.Sprintf("%.4f,%.4f", at.Latitude, at.Longitude)
	if cached, ok := s.reverse.Get(key); ok {
		return cached
	}
	out := []sdk.Record{}
	if a, ok := s.catalog.NearestAddress(at, reverseRadius); ok {
		out = append(out, a.JSON())
	}
	s.reverse.Add(key, out)
	return out
}

func (s *SDK) IPGeocode(cb sdk.IPGeocodeCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("ipGeocode", st)
			cb(st, nil, false)
			return
		}
		ip := s.catalog.IP
		address := sdk.Record(ip.Address.JSON())
		if ip.IP != "" {
			address["ip"] = ip.IP
		}
		cb(sdk.StatusSuccess, address, ip.Proxy)
	})
}

func (s *SDK) GetDistance(params sdk.DistanceParams, cb sdk.RouteCallback) {
	s.async(func() {
		origin, st := s.near(params.Origin)
		if !st.OK() {
			s.fail("getDistance", st)
			cb(st, nil)
			return
		}
		from, to := origin.Coordinate(), params.Destination.Coordinate()

		routes := sdk.Record{
			"geodesic": sdk.Record{"distance": distanceRecord(distance(from, to), params.Units)},
		}
		for _, mode := range params.Modes {
			routes[string(mode)] = route(from, to, mode, params.Units)
		}
		cb(sdk.StatusSuccess, routes)
	})
}

func (s *SDK) GetMatrix(params sdk.MatrixParams, cb sdk.MatrixCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("getMatrix", st)
			cb(st, nil)
			return
		}
		if len(params.Origins) == 0 || len(params.Destinations) == 0 {
			cb(sdk.StatusErrorBadRequest, nil)
			return
		}

		rows := make([][]sdk.Record, len(params.Origins))
		for i, o := range params.Origins {
			rows[i] = make([]sdk.Record, len(params.Destinations))
			for j, d := range params.Destinations {
				leg := route(o.Coordinate(), d.Coordinate(), params.Mode, params.Units)
				leg["originIndex"] = i
				leg["destinationIndex"] = j
				rows[i][j] = leg
			}
		}
		cb(sdk.StatusSuccess, sdk.Record{
			"origins":      coordinates(params.Origins),
			"destinations": coordinates(params.Destinations),
			"matrix":       rows,
		})
	})
}

func coordinates(locs []sdk.Location) []map[string]any {
	out := make([]map[string]any, len(locs))
	for i, l := range locs {
		out[i] = map[string]any{"latitude": l.Latitude, "longitude": l.Longitude}
	}
	return out
}

func (s *SDK) LogConversion(params sdk.ConversionParams, cb sdk.LogConversionCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("logConversion", st)
			cb(st, nil)
			return
		}
		if params.Name == "" {
			cb(sdk.StatusErrorBadRequest, nil)
			return
		}

		now := time.Now().UTC().Format(time.RFC3339)
		event := sdk.Record{
			"_id":             uuid.NewString(),
			"type":            EventConversion,
			"conversionName":  params.Name,
			"createdAt":       now,
			"actualCreatedAt": now,
		}
		if params.Revenue != nil {
			event["revenue"] = *params.Revenue
		}
		if len(params.Metadata) > 0 {
			event["metadata"] = params.Metadata
		}
		s.saveEvents([]sdk.Record{event})
		s.logf(sdk.LogLevelInfo, "conversion %s logged", params.Name)
		cb(sdk.StatusSuccess, event)
	})
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
