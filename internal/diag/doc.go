// Package diag runs the physical-consistency checks that validate a
// simulation or a force model on its own.
//
// Four independent diagnostics are provided:
//
//   - [EnergyAudit]: relative energy drift between the first and last
//     trajectory snapshot, against the model-consistent potential
//   - [ToomreAnalyzer]: local disk stability Q(r) from a rotation curve
//     and a surface-density profile
//   - [LensingTracer]: deflection angle versus impact parameter from
//     line-of-sight quadrature of the transverse field
//   - [CosmicExpansion]: scale-factor history and age of the universe,
//     cross-checked between an ODE integration and a quadrature
//
// Each diagnostic consumes an immutable trajectory or a force model and
// produces a [Report]. Diagnostics never share state, so [RunAll] can
// execute them concurrently:
//
//	outcomes := diag.RunAll(audit, toomre, lens)
//	for _, o := range outcomes {
//	    if o.Err != nil { ... }
//	}
package diag
