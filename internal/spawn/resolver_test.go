package spawn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/lvlc/internal/model"
)

func id(v uint16) *uint16 { return &v }

func enemy(explicit *uint16, spawn model.SpawnCondition) model.EnemySpec {
	return model.EnemySpec{ID: explicit, Difficulty: 1, Spawn: spawn}
}

func TestBuildTable_AssignsPositions(t *testing.T) {
	table := BuildTable([]model.EnemySpec{
		enemy(nil, model.OnStart(0)),
		enemy(id(40), model.OnStart(0)),
		enemy(nil, model.OnStart(0)),
	})

	require.Equal(t, 3, table.Len())
	assert.Equal(t, uint16(1), table.ID(0))
	assert.Equal(t, uint16(40), table.ID(1))
	assert.Equal(t, uint16(3), table.ID(2))

	pos, ok := table.Lookup(40)
	assert.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = table.Lookup(2)
	assert.False(t, ok, "position 2 holds an explicit id, so identity 2 is free")
}

func TestBuildTable_DuplicateLastWins(t *testing.T) {
	table := BuildTable([]model.EnemySpec{
		enemy(id(5), model.OnStart(0)),
		enemy(id(5), model.OnStart(0)),
	})

	pos, ok := table.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestResolve_ArgIsIdentityNotIndex(t *testing.T) {
	doc := model.LevelDocument{
		KillGoal: 2,
		Enemies: []model.EnemySpec{
			enemy(id(3), model.OnStart(0)),
			{ID: id(7), Difficulty: 200, Spawn: model.OnDeath("3", 20)},
		},
	}

	lvl, err := Resolve(doc)
	require.NoError(t, err)

	require.Len(t, lvl.Enemies, 2)
	rec := lvl.Enemies[1]
	assert.Equal(t, uint16(7), rec.ID)
	assert.Equal(t, uint8(200), rec.Difficulty)
	assert.Equal(t, model.SpawnOnDeath, rec.SpawnKind)
	assert.Equal(t, uint32(3), rec.SpawnArg)
	assert.Equal(t, uint32(20), rec.SpawnDelay)
}

func TestResolve_AutoIdentities(t *testing.T) {
	doc := model.LevelDocument{
		Enemies: []model.EnemySpec{
			enemy(nil, model.OnStart(5)),
			enemy(nil, model.OnDeath("1", 0)),
			enemy(nil, model.OnDeath(" 2 ", 0)),
		},
	}

	lvl, err := Resolve(doc)
	require.NoError(t, err)

	assert.Equal(t, uint16(1), lvl.Enemies[0].ID)
	assert.Equal(t, model.SpawnOnStart, lvl.Enemies[0].SpawnKind)
	assert.Equal(t, uint32(0), lvl.Enemies[0].SpawnArg)
	assert.Equal(t, uint32(5), lvl.Enemies[0].SpawnDelay)

	assert.Equal(t, uint16(2), lvl.Enemies[1].ID)
	assert.Equal(t, uint32(1), lvl.Enemies[1].SpawnArg)
	assert.Equal(t, uint32(2), lvl.Enemies[2].SpawnArg)
}

func TestResolve_SelfReference(t *testing.T) {
	lvl, err := Resolve(model.LevelDocument{
		Enemies: []model.EnemySpec{enemy(id(9), model.OnDeath("9", 1))},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(9), lvl.Enemies[0].SpawnArg)
}

func TestResolve_Unresolved(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"unknown identity", "99"},
		{"not a number", "boss"},
		{"empty", ""},
		{"negative", "-1"},
		{"beyond u16", "70000"},
		{"fraction", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(model.LevelDocument{
				Enemies: []model.EnemySpec{
					enemy(nil, model.OnStart(0)),
					enemy(nil, model.OnDeath(tt.target, 0)),
				},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrUnresolvedReference)

			var fe *model.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "enemies[1].spawn_when", fe.Field)
			assert.Equal(t, tt.target, fe.Value)
		})
	}
}

func TestResolve_CopiesHeaderAndPlanets(t *testing.T) {
	doc := model.LevelDocument{
		Version:   1,
		TimeLimit: 90,
		KillGoal:  4,
		Rating:    [3]uint32{1, 2, 3},
		Player:    model.PlayerSpec{Pos: model.Vec2{X: 1, Y: 2}, Health: 10},
		StartText: "Go",
		Planets: []model.PlanetSpec{
			{Type: 1, Size: 2, Pos: model.Vec2{X: 3, Y: 4}},
			{Type: 4, Size: 0.5},
		},
	}

	lvl, err := Resolve(doc)
	require.NoError(t, err)

	assert.Equal(t, doc.Version, lvl.Version)
	assert.Equal(t, doc.TimeLimit, lvl.TimeLimit)
	assert.Equal(t, doc.KillGoal, lvl.KillGoal)
	assert.Equal(t, doc.Rating, lvl.Rating)
	assert.Equal(t, doc.Player, lvl.Player)
	assert.Equal(t, doc.StartText, lvl.StartText)
	assert.Equal(t, []model.PlanetRecord{
		{Type: 1, Size: 2, Pos: model.Vec2{X: 3, Y: 4}},
		{Type: 4, Size: 0.5},
	}, lvl.Planets)
	assert.Empty(t, lvl.Enemies)
}
