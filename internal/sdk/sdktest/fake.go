// Package sdktest provides a recording SDK for tests. Asynchronous
// operations never call back on their own; tests fetch the captured
// callback and fire it.
package sdktest

import (
	"fmt"
	"slices"
	"sync"

	"github.com/arko-chat/geobridge/internal/sdk"
)

type Fake struct {
	mu        sync.Mutex
	calls     []string
	args      map[string]any
	callbacks map[string]any

	Key        string
	Receiver   sdk.Receiver
	Level      sdk.LogLevel
	User       string
	Desc       string
	Meta       map[string]any
	Anonymous  bool
	Tracking   bool
	Options    sdk.TrackingOptions
	Trip       *sdk.TripOptions
	Foreground sdk.ForegroundServiceOptions
	Notify     sdk.NotificationOptions
	Accepted   []string
	Rejected   []string
}

var _ sdk.SDK = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		args:      map[string]any{},
		callbacks: map[string]any{},
		Options:   sdk.TrackingEfficient,
	}
}

func (f *Fake) record(method string, arg any, cb any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if arg != nil {
		f.args[method] = arg
	}
	if cb != nil {
		f.callbacks[method] = cb
	}
}

func (f *Fake) locked(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

// Calls returns the SDK methods invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *Fake) Called(method string) bool {
	return slices.Contains(f.Calls(), method)
}

// Arg returns the last argument recorded for method.
func (f *Fake) Arg(method string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[method]
}

// Callback returns the callback captured by the last call to method.
func Callback[T any](f *Fake, method string) T {
	f.mu.Lock()
	defer f.mu.Unlock()
	cb, ok := f.callbacks[method].(T)
	if !ok {
		panic(fmt.Sprintf("sdktest: no %T captured for %s", cb, method))
	}
	return cb
}

func (f *Fake) Initialize(publishableKey string) {
	f.record("Initialize", publishableKey, nil)
	f.locked(func() { f.Key = publishableKey })
}

func (f *Fake) SetReceiver(r sdk.Receiver) {
	f.record("SetReceiver", nil, nil)
	f.locked(func() { f.Receiver = r })
}

func (f *Fake) SetLogLevel(level sdk.LogLevel) {
	f.record("SetLogLevel", level, nil)
	f.locked(func() { f.Level = level })
}

func (f *Fake) SetUserID(userID string) {
	f.record("SetUserID", userID, nil)
	f.locked(func() { f.User = userID })
}

func (f *Fake) UserID() string {
	f.record("UserID", nil, nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.User
}

func (f *Fake) SetDescription(description string) {
	f.record("SetDescription", description, nil)
	f.locked(func() { f.Desc = description })
}

func (f *Fake) Description() string {
	f.record("Description", nil, nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Desc
}

func (f *Fake) SetMetadata(metadata map[string]any) {
	f.record("SetMetadata", metadata, nil)
	f.locked(func() { f.Meta = metadata })
}

func (f *Fake) Metadata() map[string]any {
	f.record("Metadata", nil, nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Meta
}

func (f *Fake) SetAnonymousTrackingEnabled(enabled bool) {
	f.record("SetAnonymousTrackingEnabled", enabled, nil)
	f.locked(func() { f.Anonymous = enabled })
}

func (f *Fake) GetLocation(accuracy sdk.DesiredAccuracy, cb sdk.LocationCallback) {
	f.record("GetLocation", accuracy, cb)
}

func (f *Fake) TrackOnce(cb sdk.TrackCallback) {
	f.record("TrackOnce", nil, cb)
}

func (f *Fake) TrackOnceWithLocation(location sdk.Location, cb sdk.TrackCallback) {
	f.record("TrackOnceWithLocation", location, cb)
}

func (f *Fake) StartTracking(options sdk.TrackingOptions) {
	f.record("StartTracking", options, nil)
	f.locked(func() {
		f.Tracking = true
		f.Options = options
	})
}

func (f *Fake) StopTracking() {
	f.record("StopTracking", nil, nil)
	f.locked(func() { f.Tracking = false })
}

func (f *Fake) IsTracking() bool {
	f.record("IsTracking", nil, nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Tracking
}

func (f *Fake) TrackingOptions() sdk.TrackingOptions {
	f.record("TrackingOptions", nil, nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Options
}

func (f *Fake) MockTracking(params sdk.MockTrackingParams, cb sdk.TrackCallback) {
	f.record("MockTracking", params, cb)
}

func (f *Fake) SetForegroundServiceOptions(options sdk.ForegroundServiceOptions) {
	f.record("SetForegroundServiceOptions", options, nil)
	f.locked(func() { f.Foreground = options })
}

func (f *Fake) SetNotificationOptions(options sdk.NotificationOptions) {
	f.record("SetNotificationOptions", options, nil)
	f.locked(func() { f.Notify = options })
}

// TripCall is the recorded argument of StartTrip and UpdateTrip.
type TripCall struct {
	Options  sdk.TripOptions
	Tracking *sdk.TrackingOptions
	Status   sdk.TripStatus
}

func (f *Fake) StartTrip(options sdk.TripOptions, tracking *sdk.TrackingOptions, cb sdk.TripCallback) {
	f.record("StartTrip", TripCall{Options: options, Tracking: tracking}, cb)
}

func (f *Fake) UpdateTrip(options sdk.TripOptions, status sdk.TripStatus, cb sdk.TripCallback) {
	f.record("UpdateTrip", TripCall{Options: options, Status: status}, cb)
}

func (f *Fake) CompleteTrip(cb sdk.TripCallback) {
	f.record("CompleteTrip", nil, cb)
}

func (f *Fake) CancelTrip(cb sdk.TripCallback) {
	f.record("CancelTrip", nil, cb)
}

func (f *Fake) TripOptions() *sdk.TripOptions {
	f.record("TripOptions", nil, nil)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Trip
}

func (f *Fake) AcceptEvent(eventID, verifiedPlaceID string) {
	f.record("AcceptEvent", [2]string{eventID, verifiedPlaceID}, nil)
	f.locked(func() { f.Accepted = append(f.Accepted, eventID) })
}

func (f *Fake) RejectEvent(eventID string) {
	f.record("RejectEvent", eventID, nil)
	f.locked(func() { f.Rejected = append(f.Rejected, eventID) })
}

func (f *Fake) GetContext(cb sdk.ContextCallback) {
	f.record("GetContext", nil, cb)
}

func (f *Fake) GetContextForLocation(location sdk.Location, cb sdk.ContextCallback) {
	f.record("GetContextForLocation", location, cb)
}

func (f *Fake) SearchPlaces(params sdk.SearchPlacesParams, cb sdk.SearchPlacesCallback) {
	f.record("SearchPlaces", params, cb)
}

func (f *Fake) SearchGeofences(params sdk.SearchGeofencesParams, cb sdk.SearchGeofencesCallback) {
	f.record("SearchGeofences", params, cb)
}

func (f *Fake) SearchPoints(params sdk.SearchPointsParams, cb sdk.SearchPointsCallback) {
	f.record("SearchPoints", params, cb)
}

func (f *Fake) Autocomplete(params sdk.AutocompleteParams, cb sdk.GeocodeCallback) {
	f.record("Autocomplete", params, cb)
}

func (f *Fake) Geocode(query string, cb sdk.GeocodeCallback) {
	f.record("Geocode", query, cb)
}

func (f *Fake) ReverseGeocode(cb sdk.GeocodeCallback) {
	f.record("ReverseGeocode", nil, cb)
}

func (f *Fake) ReverseGeocodeLocation(location sdk.Location, cb sdk.GeocodeCallback) {
	f.record("ReverseGeocodeLocation", location, cb)
}

func (f *Fake) IPGeocode(cb sdk.IPGeocodeCallback) {
	f.record("IPGeocode", nil, cb)
}

func (f *Fake) GetDistance(params sdk.DistanceParams, cb sdk.RouteCallback) {
	f.record("GetDistance", params, cb)
}

func (f *Fake) GetMatrix(params sdk.MatrixParams, cb sdk.MatrixCallback) {
	f.record("GetMatrix", params, cb)
}

func (f *Fake) LogConversion(params sdk.ConversionParams, cb sdk.LogConversionCallback) {
	f.record("LogConversion", params, cb)
}

func (f *Fake) GetVerifiedLocationToken(cb sdk.TokenCallback) {
	f.record("GetVerifiedLocationToken", nil, cb)
}
