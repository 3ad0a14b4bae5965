// Package preflight provides readiness checks for the external tools and
// filesystem paths ytscribe depends on.
//
// These checks run in two contexts:
//   - The orchestrator calls RunAll before the first step and logs a warning
//     for each failure. Failures never abort the run.
//   - The CLI "ytscribe doctor" command renders the same results as a table.
package preflight
