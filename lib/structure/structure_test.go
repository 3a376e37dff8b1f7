package structure

import (
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/protocolcontrol/lib/catalog"
	"gfx.cafe/gfx/protocolcontrol/lib/translate"
)

type entity struct {
	id   int32
	Name string
}

type living struct {
	Health float64
	entity
}

type motion struct {
	X, Y, Z float64
}

type player struct {
	Score int32
	Name  string
	living
	*motion
	Flying bool
	_      int64
}

type loop struct {
	*loop
	Value int32
}

type Sender interface {
	Send() error
}

type withInterface struct {
	Sender
	Value int32
}

type numeric struct {
	Count string
}

func TestBuild_Order(t *testing.T) {
	s, skipped, err := Build(reflect.TypeOf(player{}))
	require.NoError(t, err)

	names := make([]string, 0, len(s.Fields()))
	for _, h := range s.Fields() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{
		"Score",
		"Name",
		"Flying",
		"living.Health",
		"living.entity.id",
		"living.entity.Name",
		"motion.X",
		"motion.Y",
		"motion.Z",
	}, names)

	require.Len(t, skipped, 1)
	assert.Equal(t, "_", skipped[0].Field)

	assert.Equal(t, 2, s.Count(reflect.TypeFor[int32]()))
	assert.Equal(t, 2, s.Count(reflect.TypeFor[string]()))
	assert.Equal(t, 4, s.Count(reflect.TypeFor[float64]()))
}

func TestBuild_SkipsUnaddressable(t *testing.T) {
	s, skipped, err := Build(reflect.TypeOf(loop{}))
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, "loop", skipped[0].Field)
	assert.Equal(t, 1, s.Count(reflect.TypeFor[int32]()))
}

type readerMessage struct {
	io.Reader
	Name string
}

func TestBuild_EmbeddedInterface(t *testing.T) {
	s, skipped, err := Build(reflect.TypeOf(&withInterface{}))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, 1, s.Count(reflect.TypeFor[Sender]()))
	assert.Equal(t, 1, s.Count(reflect.TypeFor[int32]()))

	cache := NewCache(nil, zaptest.NewLogger(t))
	msg := &readerMessage{Name: "steve"}
	w, err := cache.Wrap(msg)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Structure().Count(reflect.TypeFor[io.Reader]()))

	v, err := w.Get(reflect.TypeFor[io.Reader](), 0)
	require.NoError(t, err)
	assert.Nil(t, v)

	r := strings.NewReader("hello")
	require.NoError(t, w.Set(reflect.TypeFor[io.Reader](), 0, r))
	assert.Same(t, r, msg.Reader)

	got, err := GetRaw[io.Reader](w, 0)
	require.NoError(t, err)
	assert.Same(t, r, got)

	require.NoError(t, SetRaw[io.Reader](w, 0, nil))
	assert.Nil(t, msg.Reader)

	name, err := w.String(0)
	require.NoError(t, err)
	assert.Equal(t, "steve", name)
}

func TestBuild_NotStruct(t *testing.T) {
	_, _, err := Build(reflect.TypeFor[int]())
	assert.ErrorIs(t, err, ErrNotStruct)
}

func TestWrapped_GetSet(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))

	p := &player{Score: 7, Name: "steve"}
	p.id = 42
	p.living.Name = "zombie"

	w, err := cache.Wrap(p)
	require.NoError(t, err)

	score, err := w.Int32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), score)

	id, err := w.Int32(1)
	require.NoError(t, err)
	assert.Equal(t, int32(42), id)

	name, err := w.String(1)
	require.NoError(t, err)
	assert.Equal(t, "zombie", name)

	require.NoError(t, w.SetInt32(1, 99))
	assert.Equal(t, int32(99), p.id)

	require.NoError(t, w.SetString(0, "alex"))
	assert.Equal(t, "alex", p.Name)

	require.NoError(t, w.SetBool(0, true))
	assert.True(t, p.Flying)

	v, err := w.Get(reflect.TypeFor[string](), 0)
	require.NoError(t, err)
	assert.Equal(t, "alex", v)

	assert.ErrorIs(t, w.Set(reflect.TypeFor[string](), 0, 3), ErrTypeMismatch)
}

func TestWrapped_EmbeddedPointer(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))

	p := &player{}
	w, err := cache.Wrap(p)
	require.NoError(t, err)

	// ordinal 0 is living.Health, 1..3 are behind the nil *motion
	x, err := w.Float64(1)
	require.NoError(t, err)
	assert.Zero(t, x)
	assert.Nil(t, p.motion)

	require.NoError(t, w.SetFloat64(2, 64))
	require.NotNil(t, p.motion)
	assert.Equal(t, 64.0, p.Y)
}

func TestWrapped_FieldNotFound(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))

	w, err := cache.Wrap(&player{})
	require.NoError(t, err)

	_, err = w.Int32(2)
	assert.ErrorIs(t, err, ErrFieldNotFound)

	var notFound *FieldNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, notFound.Ordinal)
	assert.Equal(t, 2, notFound.Count)

	_, err = GetRaw[complex128](w, 0)
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = w.Int32(-1)
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestCache_Wrap(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))

	_, err := cache.Wrap(player{})
	assert.ErrorIs(t, err, ErrNotStruct)

	_, err = cache.Wrap((*player)(nil))
	assert.ErrorIs(t, err, ErrNotStruct)

	_, err = cache.Wrap(nil)
	assert.ErrorIs(t, err, ErrNotStruct)
}

func TestCache_Converges(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))

	results := make([]*Structure, 64)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := cache.Structure(reflect.TypeOf(&player{}))
			assert.NoError(t, err)
			results[i] = s
		}()
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
	assert.Equal(t, 1, cache.Len())

	again, err := cache.Structure(reflect.TypeOf(player{}))
	require.NoError(t, err)
	assert.Same(t, results[0], again)
}

func TestCache_OrdinalsStable(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))

	for i := 0; i < 10; i++ {
		p := &player{Score: int32(i)}
		p.id = int32(i * 10)
		w, err := cache.Wrap(p)
		require.NoError(t, err)

		score, err := w.Int32(0)
		require.NoError(t, err)
		id, err := w.Int32(1)
		require.NoError(t, err)
		assert.Equal(t, int32(i), score)
		assert.Equal(t, int32(i*10), id)
	}
}

func TestTranslatedAccess(t *testing.T) {
	registry := translate.NewRegistry()
	require.NoError(t, translate.Register(registry, translate.Func[int, string]{
		WrapFunc: func(raw string) (int, error) {
			if raw == "" {
				return 0, nil
			}
			return strconv.Atoi(raw)
		},
		UnwrapFunc: func(domain int) (string, error) {
			return strconv.Itoa(domain), nil
		},
	}))
	registry.Seal()

	cache := NewCache(registry, zaptest.NewLogger(t))

	n := &numeric{Count: "12"}
	w, err := cache.Wrap(n)
	require.NoError(t, err)

	count, err := Get[int](w, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	require.NoError(t, Set(w, 0, 30))
	assert.Equal(t, "30", n.Count)

	// untranslated types take the raw path
	raw, err := Get[string](w, 0)
	require.NoError(t, err)
	assert.Equal(t, "30", raw)

	n.Count = "nope"
	_, err = Get[int](w, 0)
	assert.Error(t, err)
}

func TestCache_Create(t *testing.T) {
	cache := NewCache(nil, zaptest.NewLogger(t))
	kind := catalog.KindOf("player", (*player)(nil), nil)

	w, err := cache.Create(&kind, catalog.Incoming)
	require.NoError(t, err)
	assert.IsType(t, &player{}, w.Message())

	_, err = cache.Create(&kind, catalog.Unspecified)
	assert.ErrorIs(t, err, catalog.ErrInvalidDirection)
}
