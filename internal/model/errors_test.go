package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FieldError
		want string
	}{
		{
			name: "absent value",
			err:  NewFieldError(ErrMissingRequiredField, "kills_goal", nil, "kills_goal is required"),
			want: "kills_goal: kills_goal is required",
		},
		{
			name: "string value is quoted",
			err:  NewFieldError(ErrUnrecognizedEncoding, "enemies[0].spawn_when", "soon", "unrecognized spawn_when"),
			want: `enemies[0].spawn_when: unrecognized spawn_when (got "soon")`,
		},
		{
			name: "number value",
			err:  NewFieldError(ErrOutOfRangeValue, "enemies[3].difficulty", int64(300), "must be within 0..255"),
			want: "enemies[3].difficulty: must be within 0..255 (got 300)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKind(t *testing.T) {
	fe := NewFieldError(ErrCapacityExceeded, "planets", 1025, "too many planets")

	assert.Equal(t, ErrCapacityExceeded, Kind(fe))
	assert.Equal(t, ErrCapacityExceeded, Kind(fmt.Errorf("normalize: %w", fe)))
	assert.Equal(t, ErrIOFailure, Kind(fmt.Errorf("%w: reading x.json: denied", ErrIOFailure)))
	assert.Nil(t, Kind(errors.New("something else")))
	assert.Nil(t, Kind(nil))

	var target *FieldError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", fe), &target))
	assert.Equal(t, "planets", target.Field)
}

func TestTypeByName(t *testing.T) {
	tag, ok := PlanetTypeByName("ice")
	assert.True(t, ok)
	assert.Equal(t, uint8(3), tag)

	tag, ok = EnemyTypeByName("shooter")
	assert.True(t, ok)
	assert.Equal(t, uint8(3), tag)

	_, ok = EnemyTypeByName("dragon")
	assert.False(t, ok)
}

func TestSpawnKind_String(t *testing.T) {
	assert.Equal(t, "on_start", SpawnOnStart.String())
	assert.Equal(t, "on_death", SpawnOnDeath.String())
	assert.Equal(t, "SpawnKind(9)", SpawnKind(9).String())
}
