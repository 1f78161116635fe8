package sim

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arko-chat/geobridge/internal/sdk"
)

const (
	placeRadius     = 50.0
	EventEntered    = "user.entered_geofence"
	EventExited     = "user.exited_geofence"
	EventArrived    = "user.arrived_at_trip_destination"
	EventStarted    = "user.started_trip"
	EventUpdated    = "user.updated_trip"
	EventCompleted  = "user.completed_trip"
	EventCancelled  = "user.cancelled_trip"
	EventConversion = "conversion"
)

// fix returns the device position stamped with the current time.
func (s *SDK) fix(accuracy sdk.DesiredAccuracy) (sdk.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := s.location
	if m, ok := accuracyMeters[accuracy]; ok {
		loc.Accuracy = m
	}
	loc.Time = time.Now()
	return loc, s.mockCancel == nil
}

func (s *SDK) GetLocation(accuracy sdk.DesiredAccuracy, cb sdk.LocationCallback) {
	s.async(func() {
		if st := s.check(true); !st.OK() {
			s.fail("getLocation", st)
			cb(st, nil, false)
			return
		}
		loc, stopped := s.fix(accuracy)

		s.mu.Lock()
		r := s.receiver
		s.mu.Unlock()
		if r != nil {
			r.OnClientLocationUpdated(loc, stopped, sdk.SourceForegroundLocation)
		}
		cb(sdk.StatusSuccess, &loc, stopped)
	})
}

func (s *SDK) TrackOnce(cb sdk.TrackCallback) {
	s.async(func() {
		if st := s.check(true); !st.OK() {
			s.fail("trackOnce", st)
			cb(st, nil, nil, nil)
			return
		}
		s.mu.Lock()
		accuracy := s.options.DesiredAccuracy
		s.mu.Unlock()

		loc, stopped := s.fix(accuracy)
		events, user := s.track(loc, stopped, sdk.SourceForegroundLocation)
		cb(sdk.StatusSuccess, &loc, events, user)
	})
}

func (s *SDK) TrackOnceWithLocation(location sdk.Location, cb sdk.TrackCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("trackOnce", st)
			cb(st, nil, nil, nil)
			return
		}
		if location.Time.IsZero() {
			location.Time = time.Now()
		}
		events, user := s.track(location, true, sdk.SourceManualLocation)
		cb(sdk.StatusSuccess, &location, events, user)
	})
}

// track moves the device to loc, works out geofence entries and exits,
// and notifies the receiver.
func (s *SDK) track(loc sdk.Location, stopped bool, source sdk.LocationSource) ([]sdk.Record, sdk.Record) {
	at := loc.Coordinate()
	now := loc.Time

	s.mu.Lock()
	s.location = loc

	var events []sdk.Record
	inside := map[string]bool{}
	for _, g := range s.catalog.Containing(at) {
		inside[g.ID] = true
		if !s.inside[g.ID] {
			events = append(events, newEvent(EventEntered, loc, now, sdk.Record{"geofence": g.JSON()}))
			if s.arrivedLocked(g) {
				s.tripStatus = sdk.TripStatusArrived
				events = append(events, newEvent(EventArrived, loc, now, sdk.Record{"trip": s.tripRecordLocked()}))
			}
		}
	}
	for id := range s.inside {
		if inside[id] {
			continue
		}
		if g, ok := s.catalog.Geofence(id); ok {
			events = append(events, newEvent(EventExited, loc, now, sdk.Record{"geofence": g.JSON()}))
		}
	}
	s.inside = inside
	user := s.userRecordLocked(loc, stopped)
	tripStatus := s.tripStatus
	r := s.receiver
	s.mu.Unlock()

	s.saveEvents(events)
	if tripStatus == sdk.TripStatusArrived {
		s.persist(keyTripStatus, tripStatus)
	}

	if r != nil {
		r.OnClientLocationUpdated(loc, stopped, source)
		r.OnLocationUpdated(loc, user)
		if len(events) > 0 {
			r.OnEventsReceived(events, user)
		}
	}
	s.logf(sdk.LogLevelDebug, "tracked %.5f,%.5f (%d events)", loc.Latitude, loc.Longitude, len(events))
	return events, user
}

// arrivedLocked reports whether entering g completes the approach to
// the active trip's destination.
func (s *SDK) arrivedLocked(g Geofence) bool {
	return s.trip != nil && s.tripStatus != sdk.TripStatusArrived && isDestination(s.trip, g)
}

func newEvent(typ string, loc sdk.Location, at time.Time, extra sdk.Record) sdk.Record {
	ev := sdk.Record{
		"_id":              uuid.NewString(),
		"type":             typ,
		"createdAt":        at.UTC().Format(time.RFC3339),
		"actualCreatedAt":  at.UTC().Format(time.RFC3339),
		"live":             false,
		"location":         point(loc.Coordinate()),
		"locationAccuracy": loc.Accuracy,
		"confidence":       3,
	}
	for k, v := range extra {
		ev[k] = v
	}
	return ev
}

func (s *SDK) saveEvents(events []sdk.Record) {
	for _, ev := range events {
		s.persist(eventPrefix+ev.GetString("_id"), eventState{Type: ev.GetString("type")})
	}
}

func (s *SDK) userRecordLocked(loc sdk.Location, stopped bool) sdk.Record {
	fences := make([]map[string]any, 0, len(s.inside))
	s.catalog.EachGeofence(func(g Geofence) bool {
		if s.inside[g.ID] {
			fences = append(fences, g.JSON())
		}
		return true
	})

	user := sdk.Record{
		"_id":              s.installID,
		"deviceId":         s.installID,
		"location":         point(loc.Coordinate()),
		"locationAccuracy": loc.Accuracy,
		"stopped":          stopped,
		"foreground":       true,
		"geofences":        fences,
	}
	if !s.anonymous {
		if s.userID != "" {
			user["userId"] = s.userID
		}
		if s.description != "" {
			user["description"] = s.description
		}
		if len(s.metadata) > 0 {
			user["metadata"] = s.metadata
		}
	}
	if p, ok := s.nearestPlace(loc.Coordinate(), placeRadius); ok {
		user["place"] = p.JSON()
	}
	if s.trip != nil {
		user["trip"] = s.tripRecordLocked()
	}
	return user
}

func (s *SDK) nearestPlace(at sdk.Coordinate, within float64) (Place, bool) {
	var best Place
	found, bestD := false, within
	for _, p := range s.catalog.Places {
		if d := distance(p.Location, at); d <= bestD {
			best, bestD, found = p, d, true
		}
	}
	return best, found
}

func (s *SDK) StartTracking(options sdk.TrackingOptions) {
	s.mu.Lock()
	s.tracking = true
	s.options = options
	s.mu.Unlock()
	s.persist(keyTracking, true)
	s.persist(keyTrackingOpts, options)
	s.logf(sdk.LogLevelInfo, "tracking started (accuracy %s)", options.DesiredAccuracy)
}

func (s *SDK) StopTracking() {
	s.mu.Lock()
	s.tracking = false
	s.stopMockLocked()
	s.mu.Unlock()
	s.persist(keyTracking, false)
	s.logf(sdk.LogLevelInfo, "tracking stopped")
}

func (s *SDK) IsTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}

func (s *SDK) TrackingOptions() sdk.TrackingOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *SDK) stopMockLocked() {
	if s.mockCancel != nil {
		s.mockCancel()
		s.mockCancel = nil
	}
}

// MockTracking walks the device from origin to destination in
// params.Steps updates, tracking at each one. The callback fires once
// per step. A new mock replaces a running one.
func (s *SDK) MockTracking(params sdk.MockTrackingParams, cb sdk.TrackCallback) {
	steps := max(params.Steps, 1)

	s.mu.Lock()
	s.stopMockLocked()
	ctx, cancel := context.WithCancel(s.ctx)
	s.mockGen++
	gen := s.mockGen
	s.mockCancel = cancel
	s.mu.Unlock()

	s.async(func() {
		defer func() {
			s.mu.Lock()
			if s.mockGen == gen {
				s.mockCancel = nil
			}
			s.mu.Unlock()
			cancel()
		}()

		ticker := time.NewTicker(max(params.Interval, time.Millisecond))
		defer ticker.Stop()

		from, to := params.Origin.Coordinate(), params.Destination.Coordinate()
		for i := range steps {
			if st := s.check(false); !st.OK() {
				s.fail("mockTracking", st)
				cb(st, nil, nil, nil)
				return
			}

			t := 1.0
			if steps > 1 {
				t = float64(i) / float64(steps-1)
			}
			at := interpolate(from, to, t)
			last := i == steps-1
			loc := sdk.Location{
				Latitude:  at.Latitude,
				Longitude: at.Longitude,
				Accuracy:  defaultAccuracy,
				Mocked:    true,
				Time:      time.Now(),
			}
			if !last {
				loc.Speed = speeds[params.Mode]
			}

			events, user := s.track(loc, last, sdk.SourceMockLocation)
			cb(sdk.StatusSuccess, &loc, events, user)
			if last {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
}
