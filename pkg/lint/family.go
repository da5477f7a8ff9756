package lint

import "slices"

// Family groups rules by the part of a docstring they check.
type Family string

const (
	// FamilyMarkup rules validate the reStructuredText the docstring
	// normalizes to (NAP001).
	FamilyMarkup Family = "markup"
	// FamilyParams rules compare documented parameters with the
	// signature (NAP002 to NAP004).
	FamilyParams Family = "params"
	// FamilyOther holds rules that carry neither tag.
	FamilyOther Family = "other"
)

// Families lists the families in report order.
func Families() []Family {
	return []Family{FamilyMarkup, FamilyParams, FamilyOther}
}

// FamilyOf derives a rule's family from its tags. The "rst" tag marks a
// markup rule and "params" a parameter rule.
func FamilyOf(rule Rule) Family {
	tags := rule.Tags()
	switch {
	case slices.Contains(tags, "rst"):
		return FamilyMarkup
	case slices.Contains(tags, "params"):
		return FamilyParams
	default:
		return FamilyOther
	}
}
