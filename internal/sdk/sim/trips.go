package sim

import (
	"time"

	"github.com/google/uuid"

	"github.com/arko-chat/geobridge/internal/sdk"
)

type tripState struct {
	ID              string          `json:"id"`
	Options         sdk.TripOptions `json:"options"`
	StartedTracking bool            `json:"startedTracking"`
}

func (s *SDK) StartTrip(options sdk.TripOptions, tracking *sdk.TrackingOptions, cb sdk.TripCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("startTrip", st)
			cb(st, nil, nil)
			return
		}

		s.mu.Lock()
		s.trip = &options
		s.tripID = uuid.NewString()
		s.tripStatus = sdk.TripStatusStarted
		s.tripTracking = false
		if tracking != nil {
			s.tripTracking = !s.tracking
			s.tracking = true
			s.options = *tracking
		}
		state := tripState{ID: s.tripID, Options: options, StartedTracking: s.tripTracking}
		isTracking, trackingOpts := s.tracking, s.options
		s.mu.Unlock()

		s.persist(keyTrip, state)
		s.persist(keyTripStatus, sdk.TripStatusStarted)
		if tracking != nil {
			s.persist(keyTracking, isTracking)
			s.persist(keyTrackingOpts, trackingOpts)
		}
		s.logf(sdk.LogLevelInfo, "trip %s started", options.ExternalID)
		s.tripEvent(EventStarted, cb)
	})
}

func (s *SDK) UpdateTrip(options sdk.TripOptions, status sdk.TripStatus, cb sdk.TripCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail("updateTrip", st)
			cb(st, nil, nil)
			return
		}

		s.mu.Lock()
		if s.trip == nil {
			s.mu.Unlock()
			s.logf(sdk.LogLevelWarning, "updateTrip without an active trip")
			cb(sdk.StatusErrorBadRequest, nil, nil)
			return
		}
		s.trip = &options
		if status != sdk.TripStatusUnknown {
			s.tripStatus = status
		}
		state := tripState{ID: s.tripID, Options: options, StartedTracking: s.tripTracking}
		tripStatus := s.tripStatus
		s.mu.Unlock()

		s.persist(keyTrip, state)
		s.persist(keyTripStatus, tripStatus)
		s.tripEvent(EventUpdated, cb)
	})
}

func (s *SDK) CompleteTrip(cb sdk.TripCallback) {
	s.endTrip(sdk.TripStatusCompleted, EventCompleted, cb)
}

func (s *SDK) CancelTrip(cb sdk.TripCallback) {
	s.endTrip(sdk.TripStatusCanceled, EventCancelled, cb)
}

// endTrip closes the active trip. Tracking the trip turned on is turned
// off again.
func (s *SDK) endTrip(status sdk.TripStatus, eventType string, cb sdk.TripCallback) {
	s.async(func() {
		if st := s.check(false); !st.OK() {
			s.fail(eventType, st)
			cb(st, nil, nil)
			return
		}

		s.mu.Lock()
		if s.trip == nil {
			s.mu.Unlock()
			s.logf(sdk.LogLevelWarning, "no active trip to end")
			cb(sdk.StatusErrorBadRequest, nil, nil)
			return
		}
		s.tripStatus = status
		trip := s.tripRecordLocked()
		loc := s.location
		stoppedTracking := s.tripTracking
		if stoppedTracking {
			s.tracking = false
		}
		s.trip, s.tripID, s.tripTracking = nil, "", false
		s.tripStatus = sdk.TripStatusUnknown
		user := s.userRecordLocked(loc, s.mockCancel == nil)
		r := s.receiver
		s.mu.Unlock()

		if err := s.store.delete(keyTrip); err != nil {
			s.logger.Error("delete trip", "err", err)
		}
		s.persist(keyTripStatus, sdk.TripStatusUnknown)
		if stoppedTracking {
			s.persist(keyTracking, false)
		}

		events := []sdk.Record{newEvent(eventType, loc, time.Now(), sdk.Record{"trip": trip})}
		s.saveEvents(events)
		if r != nil {
			r.OnEventsReceived(events, user)
		}
		s.logf(sdk.LogLevelInfo, "trip %s", status)
		cb(sdk.StatusSuccess, trip, events)
	})
}

// tripEvent reports the active trip to the receiver and the callback.
func (s *SDK) tripEvent(eventType string, cb sdk.TripCallback) {
	s.mu.Lock()
	trip := s.tripRecordLocked()
	loc := s.location
	user := s.userRecordLocked(loc, s.mockCancel == nil)
	r := s.receiver
	s.mu.Unlock()

	events := []sdk.Record{newEvent(eventType, loc, time.Now(), sdk.Record{"trip": trip})}
	s.saveEvents(events)
	if r != nil {
		r.OnEventsReceived(events, user)
	}
	cb(sdk.StatusSuccess, trip, events)
}

func (s *SDK) tripRecordLocked() sdk.Record {
	if s.trip == nil {
		return nil
	}
	t := s.trip
	rec := sdk.Record{
		"_id":        s.tripID,
		"externalId": t.ExternalID,
		"mode":       string(t.Mode),
		"status":     string(s.tripStatus),
	}
	if len(t.Metadata) > 0 {
		rec["metadata"] = t.Metadata
	}
	if t.DestinationGeofenceTag != "" {
		rec["destinationGeofenceTag"] = t.DestinationGeofenceTag
	}
	if t.DestinationGeofenceExternalID != "" {
		rec["destinationGeofenceExternalId"] = t.DestinationGeofenceExternalID
	}
	if t.ScheduledArrivalAt != nil {
		rec["scheduledArrivalAt"] = t.ScheduledArrivalAt.UTC().Format(time.RFC3339)
	}
	if dest, ok := s.destinationLocked(); ok {
		rec["destinationLocation"] = point(dest.Center)
		leg := route(s.location.Coordinate(), dest.Center, t.Mode, sdk.UnitsImperial)
		rec["eta"] = sdk.Record{
			"distance": leg["distance"].(sdk.Record)["value"],
			"duration": leg["duration"].(sdk.Record)["value"],
		}
	}
	return rec
}

func (s *SDK) destinationLocked() (Geofence, bool) {
	var dest Geofence
	found := false
	s.catalog.EachGeofence(func(g Geofence) bool {
		if isDestination(s.trip, g) {
			dest, found = g, true
			return false
		}
		return true
	})
	return dest, found
}

// isDestination matches g against the trip's destination tag and
// external id. A trip without either has no destination.
func isDestination(t *sdk.TripOptions, g Geofence) bool {
	if t.DestinationGeofenceTag == "" && t.DestinationGeofenceExternalID == "" {
		return false
	}
	return (t.DestinationGeofenceTag == "" || t.DestinationGeofenceTag == g.Tag) &&
		(t.DestinationGeofenceExternalID == "" || t.DestinationGeofenceExternalID == g.ExternalID)
}

func (s *SDK) TripOptions() *sdk.TripOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return nil
	}
	t := *s.trip
	return &t
}
