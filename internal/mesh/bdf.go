package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BDFExtractor reads Nastran bulk data. Property cards (PSHELL for surfaces,
// PSOLID for volumes) carry the attribute ID; the name comes from the
// `$ ...: <name>` comment line written just before the card by most
// exporters.
type BDFExtractor struct{}

const fixedFieldWidth = 8

// Extract implements Extractor.
func (BDFExtractor) Extract(r io.Reader) ([]Attribute, error) {
	var (
		attrs   []Attribute
		pending string
		line    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimSpace(text)

		// Only the comment directly above a property card names it.
		if strings.HasPrefix(trimmed, "$") {
			pending = ""
			if i := strings.LastIndex(trimmed, ":"); i >= 0 {
				pending = strings.TrimSpace(trimmed[i+1:])
			}
			continue
		}

		var t AttributeType
		switch card := strings.ToUpper(cardName(text)); card {
		case "PSHELL":
			t = Surface
		case "PSOLID":
			t = Volume
		default:
			pending = ""
			continue
		}

		id, err := cardID(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		name := pending
		if name == "" {
			name = fmt.Sprintf("%s_%d", strings.ToLower(string(t)), id)
		}
		attrs = append(attrs, Attribute{Name: name, ID: id, Type: t})
		pending = ""
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return attrs, nil
}

// fields splits a card in free (comma separated) or fixed (8 column) format.
func fields(text string) []string {
	if strings.Contains(text, ",") {
		parts := strings.Split(text, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	var out []string
	for i := 0; i < len(text); i += fixedFieldWidth {
		end := min(i+fixedFieldWidth, len(text))
		out = append(out, strings.TrimSpace(text[i:end]))
	}
	return out
}

func cardName(text string) string {
	f := fields(text)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func cardID(text string) (int, error) {
	f := fields(text)
	if len(f) < 2 {
		return 0, fmt.Errorf("property card without ID: %q", text)
	}
	id, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, fmt.Errorf("invalid property ID %q", f[1])
	}
	return id, nil
}
