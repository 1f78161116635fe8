// Package sdk describes the location SDK the bridge wraps. Every
// callback is expected to fire exactly once, possibly on an SDK-owned
// goroutine.
package sdk

type (
	LocationCallback        func(status Status, location *Location, stopped bool)
	TrackCallback           func(status Status, location *Location, events []Record, user Record)
	TripCallback            func(status Status, trip Record, events []Record)
	ContextCallback         func(status Status, location *Location, context Record)
	SearchPlacesCallback    func(status Status, location *Location, places []Record)
	SearchGeofencesCallback func(status Status, location *Location, geofences []Record)
	SearchPointsCallback    func(status Status, location *Location, points []Record)
	GeocodeCallback         func(status Status, addresses []Record)
	IPGeocodeCallback       func(status Status, address Record, proxy bool)
	RouteCallback           func(status Status, routes Record)
	MatrixCallback          func(status Status, matrix Record)
	LogConversionCallback   func(status Status, event Record)
	TokenCallback           func(status Status, token Record)
)

// Receiver gets unsolicited notifications.
type Receiver interface {
	OnEventsReceived(events []Record, user Record)
	OnLocationUpdated(location Location, user Record)
	OnClientLocationUpdated(location Location, stopped bool, source LocationSource)
	OnError(status Status)
	OnLog(message string)
	OnTokenUpdated(token Record)
}

type SDK interface {
	Initialize(publishableKey string)
	SetReceiver(r Receiver)
	SetLogLevel(level LogLevel)

	SetUserID(userID string)
	UserID() string
	SetDescription(description string)
	Description() string
	SetMetadata(metadata map[string]any)
	Metadata() map[string]any
	SetAnonymousTrackingEnabled(enabled bool)

	GetLocation(accuracy DesiredAccuracy, cb LocationCallback)
	TrackOnce(cb TrackCallback)
	TrackOnceWithLocation(location Location, cb TrackCallback)
	StartTracking(options TrackingOptions)
	StopTracking()
	IsTracking() bool
	TrackingOptions() TrackingOptions
	MockTracking(params MockTrackingParams, cb TrackCallback)
	SetForegroundServiceOptions(options ForegroundServiceOptions)
	SetNotificationOptions(options NotificationOptions)

	StartTrip(options TripOptions, tracking *TrackingOptions, cb TripCallback)
	UpdateTrip(options TripOptions, status TripStatus, cb TripCallback)
	CompleteTrip(cb TripCallback)
	CancelTrip(cb TripCallback)
	TripOptions() *TripOptions

	AcceptEvent(eventID, verifiedPlaceID string)
	RejectEvent(eventID string)

	GetContext(cb ContextCallback)
	GetContextForLocation(location Location, cb ContextCallback)
	SearchPlaces(params SearchPlacesParams, cb SearchPlacesCallback)
	SearchGeofences(params SearchGeofencesParams, cb SearchGeofencesCallback)
	SearchPoints(params SearchPointsParams, cb SearchPointsCallback)
	Autocomplete(params AutocompleteParams, cb GeocodeCallback)
	Geocode(query string, cb GeocodeCallback)
	ReverseGeocode(cb GeocodeCallback)
	ReverseGeocodeLocation(location Location, cb GeocodeCallback)
	IPGeocode(cb IPGeocodeCallback)
	GetDistance(params DistanceParams, cb RouteCallback)
	GetMatrix(params MatrixParams, cb MatrixCallback)
	LogConversion(params ConversionParams, cb LogConversionCallback)
	GetVerifiedLocationToken(cb TokenCallback)
}
