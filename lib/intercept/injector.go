package intercept

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/channel"
	"gfx.cafe/gfx/protocolcontrol/lib/event"
	"gfx.cafe/gfx/protocolcontrol/lib/fed"
	"gfx.cafe/gfx/protocolcontrol/lib/structure"
)

// Endpoint is anything that fires accepted connections through a pipeline, usually a *fed.Acceptor.
type Endpoint interface {
	Pipeline() *fed.Pipeline
}

type Options struct {
	Bus   *event.Bus
	Cache *structure.Cache
	Table *channel.Table
	// Resolver is handed to every profile. It may be nil.
	Resolver channel.Resolver
	Login    Identity
}

// Injector installs the Initializer on endpoints. Connections accepted while it is enabled are intercepted for
// their whole life; disabling only affects connections accepted afterwards.
type Injector struct {
	initializer *Initializer
	endpoints   []Endpoint
	enabled     bool
	log         *zap.Logger

	mu sync.Mutex
}

func NewInjector(options Options, log *zap.Logger) *Injector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Injector{
		initializer: &Initializer{
			options: &options,
		},
		log: log,
	}
}

// Setup replaces the endpoints the initializer is installed on. If the injector is enabled the initializer moves
// over immediately.
func (T *Injector) Setup(endpoints ...Endpoint) error {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.enabled {
		T.uninstall()
	}
	T.endpoints = append([]Endpoint(nil), endpoints...)
	if !T.enabled {
		return nil
	}
	return T.installAll()
}

func (T *Injector) installAll() error {
	var errs []error
	for _, e := range T.endpoints {
		errs = append(errs, e.Pipeline().AddFirst(channel.InitializerStage, T.initializer))
	}
	return errors.Join(errs...)
}

func (T *Injector) uninstall() {
	for _, e := range T.endpoints {
		if _, err := e.Pipeline().Remove(T.initializer); err != nil {
			T.log.Warn("failed to remove channel initializer", zap.Error(err))
		}
	}
}

func (T *Injector) Enable() error {
	T.mu.Lock()
	defer T.mu.Unlock()
	if T.enabled {
		return nil
	}
	T.enabled = true
	return T.installAll()
}

func (T *Injector) Disable() {
	T.mu.Lock()
	defer T.mu.Unlock()
	if !T.enabled {
		return
	}
	T.enabled = false
	T.uninstall()
}

func (T *Injector) Enabled() bool {
	T.mu.Lock()
	defer T.mu.Unlock()
	return T.enabled
}
