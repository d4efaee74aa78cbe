package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/notify"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/recurrence"
	"github.com/example/room-reservation/internal/scheduler"
	"github.com/example/room-reservation/internal/slot"
)

// CheapArgon2 keeps unlock token hashing fast in tests.
var CheapArgon2 = application.Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

// ServiceFactory builds application services with deterministic IDs and a
// controllable clock.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Window      slot.Window
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a factory over the default window.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Window:      slot.DefaultWindow(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.IDGenerator = generator }
}

// WithWindow overrides the operating window.
func WithWindow(window slot.Window) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Window = window }
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Logger = logger }
}

// NewResourceService builds a catalog service with cheap token hashing.
func (f *ServiceFactory) NewResourceService(resources persistence.ResourceRepository) *application.ResourceService {
	return application.NewResourceServiceWithLogger(
		resources,
		application.ResourceServiceOptions{Argon2: CheapArgon2},
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		f.Logger,
	)
}

// BookingServiceDeps overrides the collaborators of a booking service.
type BookingServiceDeps struct {
	Snapshots      application.SnapshotSource
	MaxOccurrences int
	Parallelism    int
}

// NewBookingService builds a booking service over the factory window.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	return application.NewBookingServiceWithLogger(
		deps.Snapshots,
		f.Window,
		recurrence.NewEngine(deps.MaxOccurrences),
		scheduler.NewDetector(deps.Parallelism),
		f.Logger,
	)
}

// NewReservationService builds a reservation service. notifier may be nil.
func (f *ServiceFactory) NewReservationService(reservations persistence.ReservationRepository, notifier notify.Notifier) *application.ReservationService {
	return application.NewReservationServiceWithLogger(
		reservations,
		notifier,
		f.Window,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		f.Logger,
	)
}
