// Package rules provides the built-in docstring rules for napcheck.
//
// # Rules
//
//   - NAP001: rst-syntax - The normalized docstring must be valid reStructuredText
//   - NAP002: param-not-in-signature - A documented parameter is not in the signature
//   - NAP003: param-not-documented - A parameter of the signature is not documented
//   - NAP004: param-order - Documented parameters are listed in a different order
//
// NAP001 applies to functions and classes. NAP002 to NAP004 apply to
// functions only. Codes are stable and never renumbered.
//
// Each rule ships a Markdown explanation under docs/, shown by
// "napcheck rules --explain".
package rules
