// Package preflight provides startup readiness checks for the paths and
// external binaries a generation run depends on.
//
// The generate command runs RunAll before touching any record so that
// configuration problems surface as a clean non-zero exit instead of a
// mid-run failure hours in. The deps command reuses the individual checks
// for status display.
package preflight
