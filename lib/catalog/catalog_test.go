package catalog

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct {
	ID int64
}

type pong struct {
	ID int64
}

type hello struct {
	Name string
}

func testCatalog(t *testing.T) *Catalog {
	var c Catalog
	require.NoError(t, c.Register(KindOf("ping", (*ping)(nil), (*pong)(nil))))
	require.NoError(t, c.Register(KindOf("hello", (*hello)(nil), nil)))
	return &c
}

func TestKind_Create(t *testing.T) {
	c := testCatalog(t)

	k, ok := c.ByName("ping")
	require.True(t, ok)

	in, err := k.Create(Incoming)
	require.NoError(t, err)
	assert.IsType(t, &ping{}, in)

	out, err := k.Create(Outgoing)
	require.NoError(t, err)
	assert.IsType(t, &pong{}, out)

	_, err = k.Create(Unspecified)
	assert.ErrorIs(t, err, ErrInvalidDirection)

	h, _ := c.ByName("hello")
	_, err = h.Create(Outgoing)
	assert.ErrorIs(t, err, ErrNoType)
}

func TestCatalog_ByType(t *testing.T) {
	c := testCatalog(t)

	k, ok := c.ByType(reflect.TypeOf(&pong{}), Outgoing)
	require.True(t, ok)
	assert.Equal(t, "ping", k.Name)

	_, ok = c.ByType(reflect.TypeOf(&pong{}), Incoming)
	assert.False(t, ok)

	k, ok = c.ByType(reflect.TypeOf(&hello{}), Unspecified)
	require.True(t, ok)
	assert.Equal(t, "hello", k.Name)
}

func TestCatalog_RegisterInvalid(t *testing.T) {
	c := testCatalog(t)

	assert.ErrorIs(t, c.Register(KindOf("ping", (*hello)(nil), nil)), ErrDuplicate)
	assert.ErrorIs(t, c.Register(KindOf("again", (*ping)(nil), nil)), ErrDuplicate)
	assert.ErrorIs(t, c.Register(KindOf("", (*ping)(nil), nil)), ErrNoName)
	assert.ErrorIs(t, c.Register(KindOf("value", ping{}, nil)), ErrNotMessage)
	assert.ErrorIs(t, c.Register(Kind{Name: "empty"}), ErrNoType)
}

func TestCatalog_Kinds(t *testing.T) {
	c := testCatalog(t)

	kinds := c.Kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, "hello", kinds[0].Name)
	assert.Equal(t, "ping", kinds[1].Name)
}
