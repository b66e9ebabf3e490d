package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeRotatesLocalOffset(t *testing.T) {
	parent := GlobalTransform{X: 10, Y: 5, Rotation: 90}
	g := Compose(parent, Transform{X: 2, Y: 0, Rotation: 45})

	assert.InDelta(t, 10, g.X, 1e-9)
	assert.InDelta(t, 7, g.Y, 1e-9)
	assert.InDelta(t, 135, g.Rotation, 1e-9)
}

func TestComposeWrapsRotation(t *testing.T) {
	g := Compose(GlobalTransform{Rotation: 300}, Transform{Rotation: 90})
	assert.InDelta(t, 30, g.Rotation, 1e-9)
	assert.Equal(t, GlobalTransform{X: 1, Y: 2, Rotation: 10}, Root(Transform{X: 1, Y: 2, Rotation: 370}))
}
