package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/scenegraph/internal/world"
)

func TestLoadScene(t *testing.T) {
	f, err := LoadScene("testdata/arm.yaml")
	require.NoError(t, err)
	require.Equal(t, 5, f.Count())

	assert.Equal(t, SceneEntity{Name: "arm", Parent: "body", X: 3, Rotation: 90}, f.Entities[2])
}

func TestLoadSceneMissingFile(t *testing.T) {
	_, err := LoadScene("testdata/nope.yaml")
	assert.ErrorContains(t, err, "read scene")
}

func TestParseSceneRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"no name":        "entities:\n  - x: 1\n",
		"duplicate":      "entities:\n  - name: a\n  - name: a\n",
		"unknown parent": "entities:\n  - name: a\n    parent: b\n",
		"not yaml":       "entities: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScene([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestPopulateLinksRegardlessOfOrder(t *testing.T) {
	f, err := LoadScene("testdata/arm.yaml")
	require.NoError(t, err)
	s := world.NewScene()

	require.NoError(t, f.Populate(s))
	assert.Equal(t, 5, s.Len())

	finger, _ := s.Lookup("finger")
	hand, _ := s.Lookup("hand")
	p, ok := s.Parents.Get(finger)
	require.True(t, ok)
	assert.Equal(t, hand, p.Entity)

	lamp, _ := s.Lookup("lamp")
	assert.False(t, s.Parents.Has(lamp))
	l, _ := s.Locals.Get(lamp)
	assert.Equal(t, -4.0, l.X)
}

func TestPopulateRejectsCycle(t *testing.T) {
	f, err := ParseScene([]byte("entities:\n  - name: a\n    parent: b\n  - name: b\n    parent: a\n"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.Populate(world.NewScene()), world.ErrCycle)
}
