// Package simulation builds engines from configuration and drives them.
//
// A Runner turns a config.CoheronConfig into a concrete belief, field,
// entanglement map and synthesizer, steps the engine under a context, and
// collects a Result: the per-step trace, the final belief snapshot, the
// coupling overlays and, when the field signal allows it, the best wavelet
// basis for the final field.
//
// Runs are reproducible: the only randomness is the belief source seeded
// from the run seed.
//
// Usage:
//
//	r := simulation.NewRunner(cfg, logger)
//	result, err := r.Run(ctx, cfg.Simulation.Seed)
package simulation
