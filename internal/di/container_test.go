package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ name string }

func TestContainerRegisterAndResolve(t *testing.T) {
	c := NewContainer()
	c.Register("greeter", &greeter{name: "hola"})
	c.Register("count", 3)

	g, err := Resolve[*greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hola", g.name)

	_, err = Resolve[*greeter](c, "count")
	assert.Error(t, err)

	_, err = Resolve[*greeter](c, "missing")
	assert.Error(t, err)

	assert.Equal(t, []string{"count", "greeter"}, c.GetNames())
}

func TestContainerRemoveAndClear(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)
	c.Register("b", 2)

	c.Remove("a")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.Nil(t, c.Get("a"))

	c.Clear()
	assert.Empty(t, c.GetNames())
}

func TestGetContainerIsShared(t *testing.T) {
	assert.Same(t, GetContainer(), GetContainer())
}
