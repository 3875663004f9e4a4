// Package spawn assigns enemy identities and resolves on-death spawn triggers.
//
// References are by identity, never by position: an on-death trigger names the
// identity of another enemy, and the resolved record keeps that identity. The
// identity->position table is built once per document and then only read.
package spawn

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/udisondev/lvlc/internal/model"
)

// Table maps enemy identities to their position in declaration order.
type Table struct {
	ids   []uint16 // final identity per position
	index map[uint16]int
}

// BuildTable assigns identities and indexes them.
// Enemies without an explicit identity get their 1-based position.
// A repeated identity is allowed; the last declaration owns it.
func BuildTable(enemies []model.EnemySpec) *Table {
	t := &Table{
		ids:   make([]uint16, len(enemies)),
		index: make(map[uint16]int, len(enemies)),
	}
	for i, e := range enemies {
		id := uint16(i + 1) // MaxEnemies keeps this within uint16
		if e.ID != nil {
			id = *e.ID
		}
		if prev, dup := t.index[id]; dup {
			slog.Warn("duplicate enemy id", "id", id, "first", prev, "again", i)
		}
		t.ids[i] = id
		t.index[id] = i
	}
	return t
}

// ID returns the final identity of the enemy at position i.
func (t *Table) ID(i int) uint16 {
	return t.ids[i]
}

// Lookup returns the position of the enemy with the given identity.
func (t *Table) Lookup(id uint16) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// Len returns the number of indexed enemies.
func (t *Table) Len() int {
	return len(t.ids)
}

// Resolve turns a normalized document into a CompiledLevel.
// Every on-death target must name a declared enemy identity (explicit or
// assigned); self-reference is allowed.
func Resolve(doc model.LevelDocument) (model.CompiledLevel, error) {
	table := BuildTable(doc.Enemies)

	out := model.CompiledLevel{
		Version:   doc.Version,
		TimeLimit: doc.TimeLimit,
		KillGoal:  doc.KillGoal,
		Rating:    doc.Rating,
		Player:    doc.Player,
		StartText: doc.StartText,
		Planets:   make([]model.PlanetRecord, len(doc.Planets)),
		Enemies:   make([]model.EnemyRecord, len(doc.Enemies)),
	}

	for i, p := range doc.Planets {
		out.Planets[i] = model.PlanetRecord{Type: p.Type, Size: p.Size, Pos: p.Pos}
	}

	for i, e := range doc.Enemies {
		rec := model.EnemyRecord{
			ID:         table.ID(i),
			Type:       e.Type,
			Pos:        e.Pos,
			Difficulty: e.Difficulty,
			Health:     e.Health,
			SpawnKind:  e.Spawn.Kind,
			SpawnDelay: e.Spawn.Delay,
		}

		if e.Spawn.Kind == model.SpawnOnDeath {
			target, err := resolveTarget(table, e.Spawn.Target)
			if err != nil {
				return model.CompiledLevel{}, model.NewFieldError(model.ErrUnresolvedReference,
					fmt.Sprintf("enemies[%d].spawn_when", i), e.Spawn.Target, err.Error())
			}
			rec.SpawnArg = uint32(target)
		}

		out.Enemies[i] = rec
	}

	return out, nil
}

func resolveTarget(table *Table, ref string) (uint16, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad on_death target id %q", ref)
	}
	if n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("on_death target id %d not found among enemies", n)
	}
	if _, ok := table.Lookup(uint16(n)); !ok {
		return 0, fmt.Errorf("on_death target id %d not found among enemies", n)
	}
	return uint16(n), nil
}
