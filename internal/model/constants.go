package model

// Binary format identity.
const (
	Magic         = "GHLV"
	FormatVersion = 1
)

// Capacity limits per level.
const (
	MaxPlanets = 1024
	MaxEnemies = 1024
)

// Type tag ranges. Raw integers are clamped into these.
const (
	MaxPlanetType = 15
	MaxEnemyType  = 8
)

// Encoded sizes in bytes.
const (
	HeaderSize       = 46 // magic(4) version(2) reserved(2) time(4) kills(2) rating(12) pos(8) health(4) counts(8)
	PlanetRecordSize = 13 // type(1) size(4) x(4) y(4)
	EnemyRecordSize  = 25 // id(2) type(1) x(4) y(4) difficulty(1) health(4) kind(1) arg(4) delay(4)
)

// TypeUnknown is the canonical tag for unrecognized planet and enemy names.
const TypeUnknown = 0

var planetTypes = map[string]uint8{
	"unknown": 0,
	"rocky":   1,
	"gas":     2,
	"ice":     3,
	"metal":   4,
}

var enemyTypes = map[string]uint8{
	"unknown": 0,
	"fighter": 1,
	"bomber":  2,
	"shooter": 3,
}

// PlanetTypeByName returns the tag for a symbolic planet name.
func PlanetTypeByName(name string) (uint8, bool) {
	t, ok := planetTypes[name]
	return t, ok
}

// EnemyTypeByName returns the tag for a symbolic enemy name.
func EnemyTypeByName(name string) (uint8, bool) {
	t, ok := enemyTypes[name]
	return t, ok
}
