package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/palacegrid/internal/ctxlog"
	"github.com/vk/palacegrid/internal/entity"
	"github.com/vk/palacegrid/internal/opt"
)

var numberList = cty.List(cty.Number)

// decodeCoeff evaluates a scalar-or-vector coefficient expression. A number
// becomes a scalar Coeff and a list or tuple of numbers becomes a vector
// Coeff; arity is checked later by the entity builder. A null expression
// yields an unset Opt.
func decodeCoeff(ctx context.Context, name string, expr hcl.Expression) (opt.Opt[entity.Coeff], hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	if expr == nil {
		return opt.None[entity.Coeff](), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return opt.None[entity.Coeff](), diags
	}
	if val.IsNull() {
		return opt.None[entity.Coeff](), nil
	}
	if !val.IsWhollyKnown() {
		return opt.None[entity.Coeff](), coeffDiag(name, expr, "value must be known")
	}

	ty := val.Type()
	switch {
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return opt.None[entity.Coeff](), coeffDiag(name, expr, err.Error())
		}
		return opt.Some(entity.Scalar(f)), nil

	case ty.IsTupleType() || ty.IsListType():
		converted, err := convert.Convert(val, numberList)
		if err != nil {
			return opt.None[entity.Coeff](), coeffDiag(name, expr, fmt.Sprintf("cannot convert %s to list of numbers: %v", ty.FriendlyName(), err))
		}
		if !ty.Equals(converted.Type()) {
			logger.Debug("Implicitly converted coefficient type.",
				"attribute", name,
				"from", ty.FriendlyName(),
				"to", converted.Type().FriendlyName(),
			)
		}
		var v []float64
		if err := gocty.FromCtyValue(converted, &v); err != nil {
			return opt.None[entity.Coeff](), coeffDiag(name, expr, err.Error())
		}
		return opt.Some(entity.Coeff(v)), nil
	}

	return opt.None[entity.Coeff](), coeffDiag(name, expr, fmt.Sprintf("expected a number or a list of numbers, got %s", ty.FriendlyName()))
}

// requireCoeff is decodeCoeff for a required attribute.
func requireCoeff(ctx context.Context, name string, expr hcl.Expression) (entity.Coeff, hcl.Diagnostics) {
	c, diags := decodeCoeff(ctx, name, expr)
	if diags.HasErrors() {
		return nil, diags
	}
	v, ok := c.Get()
	if !ok {
		return nil, coeffDiag(name, expr, "value must not be null")
	}
	return v, nil
}

func coeffDiag(name string, expr hcl.Expression, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid value for %q", name),
		Detail:   detail,
		Subject:  expr.Range().Ptr(),
	}}
}

// matrix3 converts a decoded list of lists into a 3x3 matrix.
func matrix3(name string, m [][]float64) ([3][3]float64, error) {
	var out [3][3]float64
	if len(m) != 3 {
		return out, fmt.Errorf("%s: expected 3 rows, got %d", name, len(m))
	}
	for i, row := range m {
		if len(row) != 3 {
			return out, fmt.Errorf("%s: row %d: expected 3 components, got %d", name, i+1, len(row))
		}
		copy(out[i][:], row)
	}
	return out, nil
}
