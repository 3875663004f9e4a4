package schema

import (
	"fmt"

	"github.com/udisondev/lvlc/internal/model"
)

// Normalize validates a decoded source document and coerces it into a
// model.LevelDocument. It never drops required data: a missing kills_goal or
// enemy difficulty is an error, not a default.
func Normalize(doc map[string]any) (model.LevelDocument, error) {
	var lvl model.LevelDocument
	var err error

	if lvl.Version, err = u16Field(doc, "version", "version", model.FormatVersion); err != nil {
		return model.LevelDocument{}, err
	}
	if lvl.TimeLimit, err = u32Field(doc, "time_limit", "time_limit"); err != nil {
		return model.LevelDocument{}, err
	}

	if v, ok := doc["kills_goal"]; !ok || v == nil {
		return model.LevelDocument{}, model.NewFieldError(model.ErrMissingRequiredField, "kills_goal", nil,
			"kills_goal is required at the top level of the level document")
	}
	goal, err := intValue("kills_goal", doc["kills_goal"])
	if err != nil {
		return model.LevelDocument{}, err
	}
	lvl.KillGoal = clampU16(goal)

	if lvl.Rating, err = rating(doc); err != nil {
		return model.LevelDocument{}, err
	}
	if lvl.Player, err = player(doc); err != nil {
		return model.LevelDocument{}, err
	}
	if lvl.StartText, err = startText(doc); err != nil {
		return model.LevelDocument{}, err
	}

	planets, err := entryList(doc, "planets", model.MaxPlanets)
	if err != nil {
		return model.LevelDocument{}, err
	}
	enemies, err := entryList(doc, "enemies", model.MaxEnemies)
	if err != nil {
		return model.LevelDocument{}, err
	}

	lvl.Planets = make([]model.PlanetSpec, 0, len(planets))
	for i, raw := range planets {
		p, err := planet(fmt.Sprintf("planets[%d]", i), raw)
		if err != nil {
			return model.LevelDocument{}, err
		}
		lvl.Planets = append(lvl.Planets, p)
	}

	lvl.Enemies = make([]model.EnemySpec, 0, len(enemies))
	for i, raw := range enemies {
		e, err := enemy(fmt.Sprintf("enemies[%d]", i), raw)
		if err != nil {
			return model.LevelDocument{}, err
		}
		lvl.Enemies = append(lvl.Enemies, e)
	}

	return lvl, nil
}

func rating(doc map[string]any) ([3]uint32, error) {
	var out [3]uint32
	raw, ok := doc["rating"]
	if !ok {
		return out, nil
	}
	arr, ok := raw.([]any)
	if !ok || len(arr) != 3 {
		return out, model.NewFieldError(model.ErrOutOfRangeValue, "rating", raw, "rating must be an array of 3 integers")
	}
	for i, v := range arr {
		if v == nil {
			continue // null entry counts as 0
		}
		n, err := intValue(fmt.Sprintf("rating[%d]", i), v)
		if err != nil {
			return out, err
		}
		out[i] = clampU32(n)
	}
	return out, nil
}

func player(doc map[string]any) (model.PlayerSpec, error) {
	raw, ok := doc["player"]
	if !ok || raw == nil {
		return model.PlayerSpec{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.PlayerSpec{}, model.NewFieldError(model.ErrUnrecognizedEncoding, "player", raw, "player must be an object")
	}

	pos, err := vec2Field(obj, "pos", "player.pos")
	if err != nil {
		return model.PlayerSpec{}, err
	}
	health, err := u32Field(obj, "health", "player.health")
	if err != nil {
		return model.PlayerSpec{}, err
	}
	return model.PlayerSpec{Pos: pos, Health: health}, nil
}

func startText(doc map[string]any) (string, error) {
	raw, ok := doc["start_text"]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", model.NewFieldError(model.ErrUnrecognizedEncoding, "start_text", raw, "start_text must be a string")
	}
	return s, nil
}

// entryList returns the planets/enemies array, enforcing the capacity limit
// before any entry is looked at.
func entryList(doc map[string]any, key string, limit int) ([]any, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, key, raw, key+" must be an array")
	}
	if len(arr) > limit {
		return nil, model.NewFieldError(model.ErrCapacityExceeded, key, len(arr),
			fmt.Sprintf("too many %s (max %d)", key, limit))
	}
	return arr, nil
}

func entryObject(field string, raw any) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, model.NewFieldError(model.ErrUnrecognizedEncoding, field, raw, "entry must be an object")
	}
	return obj, nil
}

func planet(field string, raw any) (model.PlanetSpec, error) {
	obj, err := entryObject(field, raw)
	if err != nil {
		return model.PlanetSpec{}, err
	}

	p := model.PlanetSpec{
		Type: typeTag(obj["type"], model.PlanetTypeByName, model.MaxPlanetType),
	}
	if v, ok := obj["size"]; ok && v != nil {
		if p.Size, err = floatValue(field+".size", v); err != nil {
			return model.PlanetSpec{}, err
		}
	}
	if p.Pos, err = vec2Field(obj, "pos", field+".pos"); err != nil {
		return model.PlanetSpec{}, err
	}
	return p, nil
}

func enemy(field string, raw any) (model.EnemySpec, error) {
	obj, err := entryObject(field, raw)
	if err != nil {
		return model.EnemySpec{}, err
	}

	e := model.EnemySpec{
		Type: typeTag(obj["type"], model.EnemyTypeByName, model.MaxEnemyType),
	}
	if e.ID, err = identity(field+".id", obj["id"]); err != nil {
		return model.EnemySpec{}, err
	}
	if e.Pos, err = vec2Field(obj, "pos", field+".pos"); err != nil {
		return model.EnemySpec{}, err
	}
	if e.Difficulty, err = difficulty(field+".difficulty", obj["difficulty"]); err != nil {
		return model.EnemySpec{}, err
	}
	if e.Health, err = u32Field(obj, "health", field+".health"); err != nil {
		return model.EnemySpec{}, err
	}

	in, err := classifySpawn(field+".spawn_when", obj["spawn_when"])
	if err != nil {
		return model.EnemySpec{}, err
	}
	if e.Spawn, err = in.condition(field + ".spawn_when"); err != nil {
		return model.EnemySpec{}, err
	}
	return e, nil
}
