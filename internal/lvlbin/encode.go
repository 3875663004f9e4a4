// Package lvlbin serializes a resolved level into the .lvl binary layout:
//
//	header (46 bytes) | start text + 0x00 | planet records (13 bytes each) | enemy records (25 bytes each)
//
// All multi-byte fields are little-endian. Records keep declaration order.
package lvlbin

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/udisondev/lvlc/internal/model"
)

// Size returns the exact encoded length of lvl.
func Size(lvl model.CompiledLevel) int {
	return model.HeaderSize +
		len(lvl.StartText) + 1 +
		len(lvl.Planets)*model.PlanetRecordSize +
		len(lvl.Enemies)*model.EnemyRecordSize
}

// Encode serializes lvl. Field widths are already guaranteed by the model
// types, so the only failure is a start text that cannot be stored as a
// nul-terminated UTF-8 string.
func Encode(lvl model.CompiledLevel) ([]byte, error) {
	if err := checkText(lvl.StartText); err != nil {
		return nil, err
	}

	w := Get()
	defer w.Put()

	writeHeader(w, lvl)
	w.WriteCString(lvl.StartText)
	for i := range lvl.Planets {
		writePlanet(w, &lvl.Planets[i])
	}
	for i := range lvl.Enemies {
		writeEnemy(w, &lvl.Enemies[i])
	}

	if w.Len() != Size(lvl) {
		return nil, fmt.Errorf("lvlbin: encoded %d bytes, expected %d", w.Len(), Size(lvl))
	}
	return bytes.Clone(w.Bytes()), nil
}

func checkText(s string) error {
	if !utf8.ValidString(s) {
		return model.NewFieldError(model.ErrUnencodableText, "start_text", nil, "start_text is not valid UTF-8")
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return model.NewFieldError(model.ErrUnencodableText, "start_text", nil,
			fmt.Sprintf("start_text contains a NUL byte at offset %d", i))
	}
	return nil
}

func writeHeader(w *Writer, lvl model.CompiledLevel) {
	w.WriteBytes([]byte(model.Magic))
	w.WriteU16(lvl.Version)
	w.WriteU16(0) // reserved
	w.WriteU32(lvl.TimeLimit)
	w.WriteU16(lvl.KillGoal)
	for _, r := range lvl.Rating {
		w.WriteU32(r)
	}
	w.WriteF32(lvl.Player.Pos.X)
	w.WriteF32(lvl.Player.Pos.Y)
	w.WriteU32(lvl.Player.Health)
	w.WriteU32(uint32(len(lvl.Planets)))
	w.WriteU32(uint32(len(lvl.Enemies)))
}

func writePlanet(w *Writer, p *model.PlanetRecord) {
	w.WriteU8(p.Type)
	w.WriteF32(p.Size)
	w.WriteF32(p.Pos.X)
	w.WriteF32(p.Pos.Y)
}

func writeEnemy(w *Writer, e *model.EnemyRecord) {
	w.WriteU16(e.ID)
	w.WriteU8(e.Type)
	w.WriteF32(e.Pos.X)
	w.WriteF32(e.Pos.Y)
	w.WriteU8(e.Difficulty)
	w.WriteU32(e.Health)
	w.WriteU8(uint8(e.SpawnKind))
	w.WriteU32(e.SpawnArg)
	w.WriteU32(e.SpawnDelay)
}
