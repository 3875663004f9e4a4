package model

// Vec2 is a position in level space. Value type, passed by value.
type Vec2 struct {
	X float32
	Y float32
}

// PlayerSpec holds the player's starting state.
type PlayerSpec struct {
	Pos    Vec2
	Health uint32
}

// PlanetSpec is one validated planet entry.
type PlanetSpec struct {
	Type uint8 // 0..MaxPlanetType
	Size float32
	Pos  Vec2
}

// EnemySpec is one validated enemy entry.
// ID is nil when the source omitted it; the resolver assigns it later.
type EnemySpec struct {
	ID         *uint16
	Type       uint8 // 0..MaxEnemyType
	Pos        Vec2
	Difficulty uint8
	Health     uint32
	Spawn      SpawnCondition
}

// LevelDocument is the strict form of a source document after normalization.
// Enemy spawn targets are still symbolic here.
type LevelDocument struct {
	Version   uint16
	TimeLimit uint32
	KillGoal  uint16
	Rating    [3]uint32
	Player    PlayerSpec
	StartText string
	Planets   []PlanetSpec
	Enemies   []EnemySpec
}

// PlanetRecord is the binary-ready planet entry.
type PlanetRecord struct {
	Type uint8
	Size float32
	Pos  Vec2
}

// EnemyRecord is the binary-ready enemy entry.
// SpawnArg holds the resolved target identity for SpawnOnDeath and 0 otherwise.
type EnemyRecord struct {
	ID         uint16
	Type       uint8
	Pos        Vec2
	Difficulty uint8
	Health     uint32
	SpawnKind  SpawnKind
	SpawnArg   uint32
	SpawnDelay uint32
}

// CompiledLevel is the validated, resolved representation handed to the encoder.
// Record order always equals source declaration order.
type CompiledLevel struct {
	Version   uint16
	TimeLimit uint32
	KillGoal  uint16
	Rating    [3]uint32
	Player    PlayerSpec
	StartText string
	Planets   []PlanetRecord
	Enemies   []EnemyRecord
}
