package protocol

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/event"
	"gfx.cafe/gfx/protocolcontrol/lib/intercept"
	"gfx.cafe/gfx/protocolcontrol/lib/structure"
	"gfx.cafe/gfx/protocolcontrol/lib/translate"
)

var ErrEnabled = errors.New("service already enabled")

type Options struct {
	// Workers sizes the bus's worker pool. Zero or less uses runtime.GOMAXPROCS(0).
	Workers int
	// Login locates the principal id in the protocol's login success message.
	Login intercept.Identity
	// Translations registers the protocol's translators before the registry is sealed.
	Translations func(*translate.Registry) error
	Resolver     channel.Resolver
}

// Service owns every part of protocol control: the message catalog, the translation registry and structure cache,
// the event bus, the table of logged in connections and the injector that intercepts new connections.
type Service struct {
	catalog      *catalog.Catalog
	registry     *translate.Registry
	cache        *structure.Cache
	bus          *event.Bus
	table        *channel.Table
	injector     *intercept.Injector
	translations func(*translate.Registry) error
	log          *zap.Logger

	enabled bool
	mu      sync.Mutex
}

func NewService(c *catalog.Catalog, options Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	registry := translate.NewRegistry()
	cache := structure.NewCache(registry, log.Named("structure"))
	bus := event.NewBus(options.Workers, log.Named("bus"))
	table := new(channel.Table)

	return &Service{
		catalog:  c,
		registry: registry,
		cache:    cache,
		bus:      bus,
		table:    table,
		injector: intercept.NewInjector(intercept.Options{
			Bus:      bus,
			Cache:    cache,
			Table:    table,
			Resolver: options.Resolver,
			Login:    options.Login,
		}, log.Named("injector")),
		translations: options.Translations,
		log:          log,
	}
}

func (T *Service) Catalog() *catalog.Catalog {
	return T.catalog
}

// Channels returns the table of logged in connections.
func (T *Service) Channels() *channel.Table {
	return T.table
}

func (T *Service) Events() *event.Bus {
	return T.bus
}

// Remapper returns the structure cache used to read and write message fields.
func (T *Service) Remapper() *structure.Cache {
	return T.cache
}

func (T *Service) Translations() *translate.Registry {
	return T.registry
}

func (T *Service) Injector() *intercept.Injector {
	return T.injector
}

// Enable seals the translations, starts the table and the bus, and begins intercepting connections accepted by
// endpoints.
func (T *Service) Enable(endpoints ...intercept.Endpoint) error {
	T.mu.Lock()
	defer T.mu.Unlock()
	if T.enabled {
		return ErrEnabled
	}

	if !T.registry.Sealed() {
		if T.translations != nil {
			if err := T.translations(T.registry); err != nil {
				return err
			}
		}
		T.registry.Seal()
	}

	for _, kind := range T.catalog.Kinds() {
		for _, direction := range [...]catalog.Direction{catalog.Incoming, catalog.Outgoing} {
			if typ := kind.Type(direction); typ != nil {
				if err := T.cache.Prebuild(typ); err != nil {
					return err
				}
			}
		}
	}
	T.log.Debug("built message structures", zap.Int("structures", T.cache.Len()))

	T.table.Enable()
	T.bus.Enable()
	if err := T.injector.Setup(endpoints...); err != nil {
		T.bus.Disable()
		T.table.Disable()
		return err
	}
	if err := T.injector.Enable(); err != nil {
		T.injector.Disable()
		T.bus.Disable()
		T.table.Disable()
		return err
	}

	T.enabled = true
	T.log.Info("protocol control enabled", zap.Int("kinds", len(T.catalog.Kinds())), zap.Int("translators", T.registry.Len()))
	return nil
}

// Disable stops intercepting new connections, drops every subscription and cancels pending fired events.
func (T *Service) Disable() {
	T.mu.Lock()
	defer T.mu.Unlock()
	if !T.enabled {
		return
	}
	T.enabled = false

	T.injector.Disable()
	T.bus.Disable()
	T.table.Disable()
	T.log.Info("protocol control disabled")
}

func (T *Service) Enabled() bool {
	T.mu.Lock()
	defer T.mu.Unlock()
	return T.enabled
}
