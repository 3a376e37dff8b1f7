package structure

import (
	"reflect"

	"go.uber.org/zap"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/translate"
	"gfx.cafe/gfx/protocolcontrol/lib/util/maps"
)

// Cache builds one Structure per message type on first use and keeps it for the life of the process.
type Cache struct {
	structures  maps.RWLocked[reflect.Type, *Structure]
	translation *translate.Registry
	log         *zap.Logger
}

// NewCache creates a cache whose wrapped messages translate fields through translation, which may be nil.
func NewCache(translation *translate.Registry, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		translation: translation,
		log:         log,
	}
}

// Structure returns the structure of typ, building it if this is the first request. Concurrent first callers all
// receive the same instance.
func (T *Cache) Structure(typ reflect.Type) (*Structure, error) {
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if s, ok := T.structures.Load(typ); ok {
		return s, nil
	}

	s, skipped, err := Build(typ)
	if err != nil {
		return nil, err
	}

	actual, loaded := T.structures.LoadOrStore(typ, s)
	if !loaded {
		for _, skip := range skipped {
			T.log.Warn(
				"skipped message field",
				zap.Stringer("message", skip.Message),
				zap.String("field", skip.Field),
				zap.Error(skip),
			)
		}
	}
	return actual, nil
}

// Prebuild builds the structures of types ahead of their first message.
func (T *Cache) Prebuild(types ...reflect.Type) error {
	for _, typ := range types {
		if _, err := T.Structure(typ); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of structures built so far.
func (T *Cache) Len() int {
	return T.structures.Len()
}

func (T *Cache) Translation() *translate.Registry {
	return T.translation
}

// Wrap couples message with its structure. message must be a non nil pointer to a struct.
func (T *Cache) Wrap(message any) (*Wrapped, error) {
	v := reflect.ValueOf(message)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	s, err := T.Structure(v.Type())
	if err != nil {
		return nil, err
	}

	return &Wrapped{
		message:   message,
		base:      v.UnsafePointer(),
		structure: s,
		cache:     T,
	}, nil
}

// Create constructs a zero message of kind for direction and wraps it.
func (T *Cache) Create(kind *catalog.Kind, direction catalog.Direction) (*Wrapped, error) {
	message, err := kind.Create(direction)
	if err != nil {
		return nil, err
	}
	return T.Wrap(message)
}
