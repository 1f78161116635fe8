// Package sim is an in-process location SDK. It answers every operation
// from a YAML catalog and a simulated device position, persists its
// settings in badger, and calls back on its own goroutines the way a
// vendor SDK does.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arko-chat/geobridge/internal/cache"
	"github.com/arko-chat/geobridge/internal/sdk"
)

const (
	geocodeTTL       = 10 * time.Minute
	reverseCacheSize = 256
	defaultAccuracy  = 10.0
)

var accuracyMeters = map[sdk.DesiredAccuracy]float64{
	sdk.AccuracyHigh:   5,
	sdk.AccuracyMedium: 20,
	sdk.AccuracyLow:    100,
}

type Options struct {
	// DataDir holds the settings database. Empty keeps settings in memory.
	DataDir string
	Catalog *Catalog
	// Origin is the starting device position. Nil uses the catalog origin.
	Origin *sdk.Location
	// TokenKey signs verified location tokens. Nil generates a key per run.
	TokenKey []byte
	// Authorized reports whether location permission is granted. Nil
	// means always granted.
	Authorized func() bool
	Logger     *slog.Logger
}

type SDK struct {
	logger     *slog.Logger
	store      *store
	catalog    *Catalog
	tokens     *securecookie.SecureCookie
	authorized func() bool
	geocodes   *cache.Cache[[]sdk.Record]
	reverse    *lru.Cache[string, []sdk.Record]

	// closeMu orders wg.Add in async against Close.
	closeMu sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu           sync.Mutex
	key          string
	level        sdk.LogLevel
	receiver     sdk.Receiver
	installID    string
	userID       string
	description  string
	metadata     map[string]any
	anonymous    bool
	location     sdk.Location
	inside       map[string]bool
	tracking     bool
	options      sdk.TrackingOptions
	trip         *sdk.TripOptions
	tripID       string
	tripStatus   sdk.TripStatus
	tripTracking bool
	mockGen      uint64
	mockCancel   context.CancelFunc
	foreground   sdk.ForegroundServiceOptions
	notification sdk.NotificationOptions
}

var _ sdk.SDK = (*SDK)(nil)

func New(opts Options) (*SDK, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sim")

	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	tokenKey := opts.TokenKey
	if tokenKey == nil {
		tokenKey = securecookie.GenerateRandomKey(32)
	}
	tokens := securecookie.New(tokenKey, nil)
	tokens.SetSerializer(securecookie.JSONEncoder{})
	tokens.MaxAge(int(tokenTTL / time.Second))

	reverse, err := lru.New[string, []sdk.Record](reverseCacheSize)
	if err != nil {
		return nil, fmt.Errorf("sim: reverse geocode cache: %w", err)
	}

	st, err := openStore(opts.DataDir, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SDK{
		logger:     logger,
		store:      st,
		catalog:    catalog,
		tokens:     tokens,
		authorized: opts.Authorized,
		geocodes:   cache.New[[]sdk.Record](geocodeTTL),
		reverse:    reverse,
		ctx:        ctx,
		cancel:     cancel,
		level:      sdk.LogLevelInfo,
		inside:     map[string]bool{},
		options:    sdk.TrackingEfficient,
		tripStatus: sdk.TripStatusUnknown,
		location: sdk.Location{
			Latitude:  catalog.Origin.Latitude,
			Longitude: catalog.Origin.Longitude,
			Accuracy:  defaultAccuracy,
		},
	}
	if opts.Origin != nil {
		s.location = *opts.Origin
	}
	s.load()
	return s, nil
}

// load restores persisted settings. Unreadable entries keep defaults.
func (s *SDK) load() {
	restore := func(key string, dst any) {
		if _, err := s.store.get(key, dst); err != nil {
			s.logger.Warn("restore setting", "key", key, "err", err)
		}
	}
	restore(keyUserID, &s.userID)
	restore(keyDescription, &s.description)
	restore(keyMetadata, &s.metadata)
	restore(keyAnonymous, &s.anonymous)
	restore(keyLogLevel, &s.level)
	restore(keyTracking, &s.tracking)
	restore(keyTrackingOpts, &s.options)
	restore(keyTripStatus, &s.tripStatus)

	var trip tripState
	if found, err := s.store.get(keyTrip, &trip); err != nil {
		s.logger.Warn("restore trip", "err", err)
	} else if found {
		s.trip, s.tripID, s.tripTracking = &trip.Options, trip.ID, trip.StartedTracking
	}

	found, err := s.store.get(keyInstallID, &s.installID)
	if err != nil || !found {
		s.installID = uuid.NewString()
		s.persist(keyInstallID, s.installID)
	}
}

// Close stops mock tracking, waits for pending callbacks and closes the
// settings database.
func (s *SDK) Close() error {
	s.closeMu.Lock()
	s.cancel()
	s.closeMu.Unlock()
	s.wg.Wait()
	return s.store.close()
}

func (s *SDK) persist(key string, v any) {
	if err := s.store.put(key, v); err != nil {
		s.logger.Error("persist setting", "key", key, "err", err)
	}
}

// async runs fn on its own goroutine, the way the SDK delivers callbacks.
// Once Close has started fn is dropped.
func (s *SDK) async(fn func()) {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.ctx.Err() != nil {
		s.logger.Warn("sdk closed, dropping callback")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// logf writes to slog and forwards the line to the receiver when the
// SDK log level admits it.
func (s *SDK) logf(level sdk.LogLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Debug(msg, "level", level.String())

	s.mu.Lock()
	r, admitted := s.receiver, level != sdk.LogLevelNone && level <= s.level
	s.mu.Unlock()
	if r != nil && admitted {
		r.OnLog(msg)
	}
}

// check returns the status an operation fails with before doing any
// work, or SUCCESS.
func (s *SDK) check(needsLocation bool) sdk.Status {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()

	if key == "" {
		return sdk.StatusErrorPublishableKey
	}
	if needsLocation && s.authorized != nil && !s.authorized() {
		return sdk.StatusErrorPermissions
	}
	return sdk.StatusSuccess
}

func (s *SDK) fail(op string, status sdk.Status) {
	s.logf(sdk.LogLevelError, "%s failed: %s", op, status)

	s.mu.Lock()
	r := s.receiver
	s.mu.Unlock()
	if r != nil {
		r.OnError(status)
	}
}

func (s *SDK) Initialize(publishableKey string) {
	s.mu.Lock()
	s.key = publishableKey
	s.mu.Unlock()
	s.logf(sdk.LogLevelInfo, "initialized with install %s", s.installID)
}

func (s *SDK) SetReceiver(r sdk.Receiver) {
	s.mu.Lock()
	s.receiver = r
	s.mu.Unlock()
}

func (s *SDK) SetLogLevel(level sdk.LogLevel) {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
	s.persist(keyLogLevel, level)
}

func (s *SDK) LogLevel() sdk.LogLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func (s *SDK) SetUserID(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
	s.persist(keyUserID, userID)
}

func (s *SDK) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *SDK) SetDescription(description string) {
	s.mu.Lock()
	s.description = description
	s.mu.Unlock()
	s.persist(keyDescription, description)
}

func (s *SDK) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

func (s *SDK) SetMetadata(metadata map[string]any) {
	metadata = maps.Clone(metadata)
	s.mu.Lock()
	s.metadata = metadata
	s.mu.Unlock()
	s.persist(keyMetadata, metadata)
}

func (s *SDK) Metadata() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.metadata)
}

func (s *SDK) SetAnonymousTrackingEnabled(enabled bool) {
	s.mu.Lock()
	s.anonymous = enabled
	s.mu.Unlock()
	s.persist(keyAnonymous, enabled)
}

func (s *SDK) SetForegroundServiceOptions(options sdk.ForegroundServiceOptions) {
	s.mu.Lock()
	s.foreground = options
	s.mu.Unlock()
	s.logf(sdk.LogLevelDebug, "foreground service options set: %q", options.Title)
}

func (s *SDK) SetNotificationOptions(options sdk.NotificationOptions) {
	s.mu.Lock()
	s.notification = options
	s.mu.Unlock()
	s.logf(sdk.LogLevelDebug, "notification options set")
}

type eventState struct {
	Type            string `json:"type"`
	Verification    string `json:"verification,omitempty"`
	VerifiedPlaceID string `json:"verifiedPlaceId,omitempty"`
}

const (
	VerificationAccepted = "accepted"
	VerificationRejected = "rejected"
)

func (s *SDK) AcceptEvent(eventID, verifiedPlaceID string) {
	s.verify(eventID, VerificationAccepted, verifiedPlaceID)
}

func (s *SDK) RejectEvent(eventID string) {
	s.verify(eventID, VerificationRejected, "")
}

func (s *SDK) verify(eventID, verification, placeID string) {
	var ev eventState
	found, err := s.store.get(eventPrefix+eventID, &ev)
	if err != nil {
		s.logger.Error("load event", "event", eventID, "err", err)
		return
	}
	if !found {
		s.logf(sdk.LogLevelWarning, "verify unknown event %s", eventID)
		return
	}
	ev.Verification, ev.VerifiedPlaceID = verification, placeID
	s.persist(eventPrefix+eventID, ev)
	s.logf(sdk.LogLevelInfo, "event %s %s", eventID, verification)
}

// Verification returns how an emitted event was verified, if at all.
func (s *SDK) Verification(eventID string) (verification, placeID string, ok bool) {
	var ev eventState
	found, err := s.store.get(eventPrefix+eventID, &ev)
	if err != nil || !found {
		return "", "", false
	}
	return ev.Verification, ev.VerifiedPlaceID, true
}
