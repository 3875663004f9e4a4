package model

import "fmt"

// SpawnKind is the on-disk spawn discriminator.
type SpawnKind uint8

const (
	SpawnOnStart SpawnKind = 0
	SpawnOnDeath SpawnKind = 1
)

// String returns the source-document keyword for the kind.
func (k SpawnKind) String() string {
	switch k {
	case SpawnOnStart:
		return "on_start"
	case SpawnOnDeath:
		return "on_death"
	default:
		return fmt.Sprintf("SpawnKind(%d)", uint8(k))
	}
}

// SpawnCondition decides when an enemy enters play.
//
// OnStart fires Delay ticks after level start. OnDeath fires Delay ticks after
// the enemy whose identity is Target dies. Target is kept as written in the
// source (e.g. "3") and is only checked by the resolver.
type SpawnCondition struct {
	Kind   SpawnKind
	Target string
	Delay  uint32
}

// OnStart builds an on-start condition.
func OnStart(delay uint32) SpawnCondition {
	return SpawnCondition{Kind: SpawnOnStart, Delay: delay}
}

// OnDeath builds an on-death condition referencing target.
func OnDeath(target string, delay uint32) SpawnCondition {
	return SpawnCondition{Kind: SpawnOnDeath, Target: target, Delay: delay}
}
