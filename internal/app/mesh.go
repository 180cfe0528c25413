package app

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/mesh"
)

// Mesh prints the named attributes of a mesh file, volumes first.
func (a *App) Mesh(ctx context.Context, path string) error {
	ctx = a.context(ctx)
	attrs, err := mesh.ExtractFile(path)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Mesh attributes extracted.", "path", path, "count", len(attrs))

	fmt.Fprintf(a.outW, "%-8s %-6s %s\n", "Type", "ID", "Name")
	for _, t := range []mesh.AttributeType{mesh.Volume, mesh.Surface} {
		c := color.New(color.FgCyan)
		if t == mesh.Surface {
			c = color.New(color.FgGreen)
		}
		for _, attr := range mesh.Filter(attrs, t) {
			fmt.Fprintf(a.outW, "%-8s %-6d %s\n", c.Sprint(string(attr.Type)), attr.ID, attr.Name)
		}
	}
	return nil
}
