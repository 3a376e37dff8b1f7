package translate

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	ErrSealed    = errors.New("translation registry is sealed")
	ErrDuplicate = errors.New("domain type already has a translator")
)

// Registry maps domain types to translators. It is written while the service is set up and sealed once it is
// enabled, after which lookups take no lock.
type Registry struct {
	translators map[reflect.Type]Translator
	sealed      atomic.Bool
	mu          sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		translators: make(map[reflect.Type]Translator),
	}
}

func (T *Registry) Register(domain reflect.Type, translator Translator) error {
	if domain == nil || translator == nil {
		return errors.New("register translator: domain and translator are required")
	}
	if translator.Domain() != domain {
		return fmt.Errorf("register translator for %s: %w: translator produces %s", domain, ErrTypeMismatch, translator.Domain())
	}

	T.mu.Lock()
	defer T.mu.Unlock()

	if T.sealed.Load() {
		return fmt.Errorf("register translator for %s: %w", domain, ErrSealed)
	}
	if _, ok := T.translators[domain]; ok {
		return fmt.Errorf("register translator for %s: %w", domain, ErrDuplicate)
	}
	if T.translators == nil {
		T.translators = make(map[reflect.Type]Translator)
	}
	T.translators[domain] = translator
	return nil
}

func (T *Registry) Lookup(domain reflect.Type) (Translator, bool) {
	if T == nil {
		return nil, false
	}
	if T.sealed.Load() {
		t, ok := T.translators[domain]
		return t, ok
	}

	T.mu.RLock()
	defer T.mu.RUnlock()
	t, ok := T.translators[domain]
	return t, ok
}

// Seal rejects further registrations. Sealing twice is a no-op.
func (T *Registry) Seal() {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.sealed.Store(true)
}

func (T *Registry) Sealed() bool {
	return T.sealed.Load()
}

func (T *Registry) Len() int {
	T.mu.RLock()
	defer T.mu.RUnlock()
	return len(T.translators)
}

// Register adds translator for the domain type D.
func Register[D, R any](registry *Registry, translator Func[D, R]) error {
	return registry.Register(reflect.TypeFor[D](), translator)
}
