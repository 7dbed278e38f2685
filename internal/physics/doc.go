// Package physics is the force model of the particle field.
//
// Every contribution is a pure function of the pre-tick particle snapshot
// and an explicit [Env] holding the host inputs for the tick:
//
//   - home attraction: a linear spring back to the spawn point
//   - scroll dispersion: radial push away from the viewport centre
//   - pointer repulsion: inverse-square push inside the cursor radius
//   - shockwave impulse: decaying radial push from recent clicks
//   - collision: per-particle separation from overlapping neighbours
//
// Contributions that divide by a distance skip themselves when that
// distance is zero or nearly so, so no source can produce Inf or NaN.
//
// # Ordering
//
// [Forces.Evaluate] only reads particle state. Callers accumulate into a
// separate buffer and integrate afterwards, so the result for a particle
// never depends on which other particles were evaluated first:
//
//	for i := range ps {
//	    acc[i] = forces.Evaluate(i, ps, tree.Query(...), &env).Total()
//	}
//	integrator.StepAll(ps, acc, w, h)
package physics
