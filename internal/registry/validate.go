package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/palacegrid/internal/ctxlog"
)

var (
	expressionType = reflect.TypeOf((*hcl.Expression)(nil)).Elem()
	bodyType       = reflect.TypeOf((*hcl.Body)(nil)).Elem()
)

// ValidateRegistry checks that every registered input struct can be decoded
// by gohcl: each exported field carries an hcl tag, and every attribute field
// has a Go type that maps onto a cty type.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	check := func(kind, label string, t reflect.Type) {
		if t == nil {
			errs = append(errs, fmt.Sprintf("%s '%s': no input type registered", kind, label))
			return
		}
		errs = append(errs, validateInput(kind, label, t)...)
	}

	for _, label := range r.BoundaryLabels() {
		check("boundary", label, r.BoundaryRegistry[label].InputType)
	}
	for _, label := range r.PostprocessingLabels() {
		check("postprocessing", label, r.PostprocessingRegistry[label].InputType)
	}
	for _, label := range r.SolverLabels() {
		check("solver", label, r.SolverRegistry[label].InputType)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validated.",
		"boundaries", len(r.BoundaryRegistry),
		"postprocessing", len(r.PostprocessingRegistry),
		"solvers", len(r.SolverRegistry),
	)
	return nil
}

func validateInput(kind, label string, t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return []string{fmt.Sprintf("%s '%s': input type %s is not a struct", kind, label, t)}
	}

	var errs []string
	seen := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, ok := field.Tag.Lookup("hcl")
		if !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': field '%s' has no hcl tag", kind, label, field.Name))
			continue
		}
		parts := strings.Split(tag, ",")
		name, mode := parts[0], ""
		if len(parts) > 1 {
			mode = parts[1]
		}
		if name != "" {
			if prev, dup := seen[name]; dup {
				errs = append(errs, fmt.Sprintf("%s '%s': fields '%s' and '%s' share hcl name '%s'", kind, label, prev, field.Name, name))
			}
			seen[name] = field.Name
		}

		switch mode {
		case "block", "label", "remain":
			continue
		}
		if field.Type == expressionType || field.Type == bodyType {
			continue
		}
		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if _, err := gocty.ImpliedType(reflect.Zero(ft).Interface()); err != nil {
			errs = append(errs, fmt.Sprintf("%s '%s', attribute '%s': could not imply cty type from Go field type %s: %v", kind, label, name, field.Type, err))
		}
	}
	sort.Strings(errs)
	return errs
}
