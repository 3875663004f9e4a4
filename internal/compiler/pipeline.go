// Package compiler runs the level pipeline (decode, normalize, resolve,
// encode) for single files and for whole directories.
package compiler

import (
	"fmt"

	"github.com/udisondev/lvlc/internal/lvlbin"
	"github.com/udisondev/lvlc/internal/model"
	"github.com/udisondev/lvlc/internal/schema"
	"github.com/udisondev/lvlc/internal/spawn"
)

// Compile runs the whole pipeline over one in-memory source document.
// It is pure: no file system access and no shared state.
func Compile(data []byte, format schema.Format) (model.CompiledLevel, []byte, error) {
	doc, err := schema.Decode(data, format)
	if err != nil {
		return model.CompiledLevel{}, nil, fmt.Errorf("decode: %w", err)
	}

	lvl, err := schema.Normalize(doc)
	if err != nil {
		return model.CompiledLevel{}, nil, fmt.Errorf("normalize: %w", err)
	}

	compiled, err := spawn.Resolve(lvl)
	if err != nil {
		return model.CompiledLevel{}, nil, fmt.Errorf("resolve: %w", err)
	}

	out, err := lvlbin.Encode(compiled)
	if err != nil {
		return model.CompiledLevel{}, nil, fmt.Errorf("encode: %w", err)
	}
	return compiled, out, nil
}
