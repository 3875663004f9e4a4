// Package schema turns a loosely-typed level source document into a strict
// model.LevelDocument. All permissiveness of the source format (numbers as text,
// legacy spawn encodings, symbolic type names) lives here; later stages only see
// strict types.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/lvlc/internal/model"
)

// Format identifies the source document syntax.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from the file extension.
// Anything that is not .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a source document. The root must be a mapping.
//
// JSON numbers are kept as json.Number so that "5" and "5.0" stay
// distinguishable; YAML scalars decode to int, float64, bool or string.
func Decode(data []byte, format Format) (map[string]any, error) {
	var root map[string]any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", model.ErrUnrecognizedEncoding, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&root); err != nil {
			return nil, fmt.Errorf("%w: json: %v", model.ErrUnrecognizedEncoding, err)
		}
		// Только один документ на файл
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: json: trailing data after document", model.ErrUnrecognizedEncoding)
		}
		if err := checkStartTextEscapes(data); err != nil {
			return nil, err
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: document root must be an object", model.ErrUnrecognizedEncoding)
	}
	return root, nil
}

// checkStartTextEscapes rejects a JSON start_text holding an unpaired UTF-16
// surrogate escape. encoding/json would replace it with U+FFFD and the level
// would compile with different text than written.
func checkStartTextEscapes(data []byte) error {
	if !bytes.Contains(data, []byte(`\u`)) {
		return nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil
	}
	raw, ok := top["start_text"]
	if !ok || !hasLoneSurrogate(raw) {
		return nil
	}
	return model.NewFieldError(model.ErrUnencodableText, "start_text", string(raw),
		"start_text contains an unpaired UTF-16 surrogate escape")
}

func hasLoneSurrogate(raw []byte) bool {
	for i := 0; i < len(raw); {
		if raw[i] != '\\' || i+1 >= len(raw) {
			i++
			continue
		}
		if raw[i+1] != 'u' {
			i += 2
			continue
		}
		r, ok := escapedRune(raw, i)
		if !ok {
			return false
		}
		i += 6
		switch {
		case r >= 0xDC00 && r <= 0xDFFF:
			return true
		case r >= 0xD800 && r <= 0xDBFF:
			lo, ok := escapedRune(raw, i)
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return true
			}
			i += 6
		}
	}
	return false
}

// escapedRune reads the \uXXXX escape starting at raw[i].
func escapedRune(raw []byte, i int) (rune, bool) {
	if i+6 > len(raw) || raw[i] != '\\' || raw[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(string(raw[i+2:i+6]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
