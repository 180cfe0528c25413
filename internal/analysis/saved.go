package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PortRecord is the part of a saved LumpedPort entry the analyzer reads.
type PortRecord struct {
	Index int      `json:"Index"`
	L     *float64 `json:"L"`
}

// SavedDocument is a read-only view of a persisted configuration document.
type SavedDocument struct {
	ProblemType string
	Ports       []PortRecord
}

type savedLayout struct {
	Problem struct {
		Type string `json:"Type"`
	} `json:"Problem"`
	Boundaries struct {
		LumpedPort json.RawMessage `json:"LumpedPort"`
	} `json:"Boundaries"`
}

// ReadDocument parses a persisted document. LumpedPort may be encoded as a
// single object or as an array.
func ReadDocument(r io.Reader) (*SavedDocument, error) {
	var layout savedLayout
	if err := json.NewDecoder(r).Decode(&layout); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	ports, err := decodeGroup[PortRecord](layout.Boundaries.LumpedPort)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Boundaries.LumpedPort: %w", err)
	}
	return &SavedDocument{ProblemType: layout.Problem.Type, Ports: ports}, nil
}

// ReadDocumentFile opens path and parses it with ReadDocument.
func ReadDocumentFile(path string) (*SavedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// decodeGroup accepts the collapsed encoding of a grouped kind.
func decodeGroup[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var many []T
		err := json.Unmarshal(raw, &many)
		return many, err
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// LumpedPortInductance returns L of the first lumped port with the given
// index.
func (d *SavedDocument) LumpedPortInductance(index int) (float64, error) {
	for _, p := range d.Ports {
		if p.Index != index {
			continue
		}
		if p.L == nil {
			return 0, &LookupError{What: "LumpedPort inductance L", Key: index}
		}
		return *p.L, nil
	}
	return 0, &LookupError{What: "LumpedPort", Key: index}
}
