package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GmshExtractor reads the $PhysicalNames section of a Gmsh .msh file.
// Dimension 2 groups are surfaces and dimension 3 groups are volumes; lower
// dimensions are skipped.
type GmshExtractor struct{}

// Extract implements Extractor.
func (GmshExtractor) Extract(r io.Reader) ([]Attribute, error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if strings.TrimSpace(sc.Text()) != "$PhysicalNames" {
			continue
		}

		if !sc.Scan() {
			break
		}
		line++
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid physical name count: %w", line, err)
		}

		attrs := make([]Attribute, 0, n)
		for i := 0; i < n; i++ {
			if !sc.Scan() {
				return nil, fmt.Errorf("line %d: expected %d physical names, got %d", line, n, i)
			}
			line++
			a, ok, err := parsePhysicalName(sc.Text())
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if ok {
				attrs = append(attrs, a)
			}
		}
		return attrs, sc.Err()
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no $PhysicalNames section")
}

// parsePhysicalName parses `<dim> <tag> "<name>"`.
func parsePhysicalName(s string) (Attribute, bool, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Attribute{}, false, fmt.Errorf("malformed physical name %q", s)
	}
	dim, err := strconv.Atoi(fields[0])
	if err != nil {
		return Attribute{}, false, fmt.Errorf("invalid dimension %q", fields[0])
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return Attribute{}, false, fmt.Errorf("invalid tag %q", fields[1])
	}
	name := strings.Trim(strings.Join(fields[2:], " "), `"`)

	switch dim {
	case 2:
		return Attribute{Name: name, ID: id, Type: Surface}, true, nil
	case 3:
		return Attribute{Name: name, ID: id, Type: Volume}, true, nil
	default:
		return Attribute{}, false, nil
	}
}
