// Package mesh reads the named physical groups out of mesh files so that deck
// authors can look up the integer attributes that materials and boundaries
// refer to. Two text dialects are supported: Gmsh .msh and Nastran .bdf.
package mesh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AttributeType says whether an attribute tags a volume or a surface.
type AttributeType string

const (
	Surface AttributeType = "Surface"
	Volume  AttributeType = "Volume"
)

// Attribute is one named physical group of a mesh.
type Attribute struct {
	Name string
	ID   int
	Type AttributeType
}

// Extractor reads the attributes of one mesh dialect.
type Extractor interface {
	Extract(r io.Reader) ([]Attribute, error)
}

// ExtractorFor picks the extractor for a mesh file by its extension.
func ExtractorFor(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msh":
		return GmshExtractor{}, nil
	case ".bdf", ".nas":
		return BDFExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported mesh format %q", filepath.Ext(path))
	}
}

// ExtractFile opens path and extracts its attributes with the extractor
// matching its extension.
func ExtractFile(path string) ([]Attribute, error) {
	ex, err := ExtractorFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	attrs, err := ex.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return attrs, nil
}

// Filter returns the attributes of type t.
func Filter(attrs []Attribute, t AttributeType) []Attribute {
	var out []Attribute
	for _, a := range attrs {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}
