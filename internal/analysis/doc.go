// Package analysis summarises recorded runs:
//
//   - [NewPhasePortrait]: trajectory of two compartment totals, e.g. S against I
//   - [Summarize]: peak, final size and early exponential growth of a compartment
//   - [ReproductionNumber]: basic reproduction number implied by a growth rate
//
// Everything works on frames as produced by the frame driver or read back
// from storage, so runs can be analysed long after they finished.
package analysis
