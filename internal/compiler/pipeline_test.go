package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/lvlc/internal/model"
	"github.com/udisondev/lvlc/internal/schema"
	"github.com/udisondev/lvlc/internal/testutil"
)

const validLevel = `{
	"time_limit": 120,
	"kills_goal": 2,
	"rating": [10, 20, 30],
	"player": {"pos": [0, 0], "health": 100},
	"start_text": "Survive",
	"planets": [{"type": "rocky", "size": 2, "pos": [3, 4]}],
	"enemies": [
		{"id": 3, "type": "fighter", "difficulty": 1},
		{"id": 7, "type": "bomber", "difficulty": 200, "spawn_when": {"kind": "on_death", "arg": 3, "delay": 5}}
	]
}`

func TestCompile_Valid(t *testing.T) {
	lvl, out, err := Compile([]byte(validLevel), schema.FormatJSON)
	require.NoError(t, err)

	assert.Len(t, lvl.Planets, 1)
	assert.Len(t, lvl.Enemies, 2)
	testutil.AssertMagic(t, model.Magic, out)
	testutil.AssertLength(t, model.HeaderSize+len("Survive")+1+model.PlanetRecordSize+2*model.EnemyRecordSize, out)

	second := model.HeaderSize + len("Survive") + 1 + model.PlanetRecordSize + model.EnemyRecordSize
	testutil.AssertU16LE(t, 7, out, second)
	testutil.AssertByteAtOffset(t, uint8(model.SpawnOnDeath), out, second+16)
	testutil.AssertU32LE(t, 3, out, second+17)
	testutil.AssertU32LE(t, 5, out, second+21)
}

func TestCompile_EmptyLevel(t *testing.T) {
	_, out, err := Compile([]byte(`{"kills_goal": 0, "start_text": "Hello"}`), schema.FormatJSON)
	require.NoError(t, err)

	testutil.AssertLength(t, model.HeaderSize+len("Hello")+1, out)
	testutil.AssertU32LE(t, 0, out, 38)
	testutil.AssertU32LE(t, 0, out, 42)
}

func TestCompile_StageErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   error
		prefix string
	}{
		{"bad json", `{"kills_goal":`, model.ErrUnrecognizedEncoding, "decode:"},
		{"missing kill goal", `{"time_limit": 3}`, model.ErrMissingRequiredField, "normalize:"},
		{"capacity", `{"kills_goal": 1, "planets": [` + strings.Repeat(`{},`, model.MaxPlanets) + `{}]}`, model.ErrCapacityExceeded, "normalize:"},
		{"unresolved", `{"kills_goal": 1, "enemies": [{"difficulty": 1, "spawn_when": "on_death:4"}]}`, model.ErrUnresolvedReference, "resolve:"},
		{"lone surrogate in text", `{"kills_goal": 1, "start_text": "\ud800"}`, model.ErrUnencodableText, "decode:"},
		{"nul in text", `{"kills_goal": 1, "start_text": "a\u0000b"}`, model.ErrUnencodableText, "encode:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := Compile([]byte(tt.src), schema.FormatJSON)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.kind, model.Kind(err))
			assert.True(t, strings.HasPrefix(err.Error(), tt.prefix), "error %q should start with %q", err, tt.prefix)
		})
	}
}

func TestCompile_YAMLMatchesJSON(t *testing.T) {
	yamlSrc := `
time_limit: 120
kills_goal: 2
rating: [10, 20, 30]
player: {pos: [0, 0], health: 100}
start_text: Survive
planets:
  - {type: rocky, size: 2, pos: [3, 4]}
enemies:
  - {id: 3, type: fighter, difficulty: 1}
  - {id: 7, type: bomber, difficulty: 200, spawn_when: {kind: on_death, arg: 3, delay: 5}}
`
	_, fromJSON, err := Compile([]byte(validLevel), schema.FormatJSON)
	require.NoError(t, err)
	_, fromYAML, err := Compile([]byte(yamlSrc), schema.FormatYAML)
	require.NoError(t, err)

	testutil.AssertBytesEqual(t, fromJSON, fromYAML, "json and yaml sources")
}
