package ledger

import (
	"math"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText trims surrounding whitespace and applies NFC so that
// visually identical operator input compares equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalize returns c with every text field normalized.
func (c NewCylinder) normalize() NewCylinder {
	c.OrderNumber = normalizeText(c.OrderNumber)
	c.CurrentID = normalizeText(c.CurrentID)
	c.NeededID = normalizeText(c.NeededID)
	c.OvenNumber = normalizeText(c.OvenNumber)
	c.Operator = normalizeText(c.Operator)
	c.Material = normalizeText(c.Material)
	return c
}

// Validate normalizes c and checks it against the oven set, reporting every
// invalid field in column order. Returns nil when AddCylinder would accept c.
func Validate(c NewCylinder, ovens []string) *ValidationError {
	return validate(c.normalize(), ovens)
}

// validate checks a normalized NewCylinder against the oven set.
// Returns nil when the input is acceptable.
func validate(c NewCylinder, ovens []string) *ValidationError {
	var fields []FieldError
	required := func(name, value string) {
		if value == "" {
			fields = append(fields, FieldError{Field: name, Message: "is required"})
		}
	}

	required("OrderNumber", c.OrderNumber)
	required("CurrentID", c.CurrentID)
	required("NeededID", c.NeededID)
	if c.OvenNumber == "" {
		fields = append(fields, FieldError{Field: "OvenNumber", Message: "is required"})
	} else if len(ovens) > 0 && !slices.Contains(ovens, c.OvenNumber) {
		fields = append(fields, FieldError{
			Field:   "OvenNumber",
			Message: "must be one of " + strings.Join(ovens, ", "),
		})
	}
	if c.EstimatedDuration < 1 {
		fields = append(fields, FieldError{Field: "EstimatedDuration", Message: "must be at least 1 minute"})
	}
	required("Operator", c.Operator)
	required("Material", c.Material)
	if math.IsNaN(c.Thickness) || math.IsInf(c.Thickness, 0) || c.Thickness < 0 {
		fields = append(fields, FieldError{Field: "Thickness", Message: "must be a non-negative number"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
