// Package dynamo holds the primitives shared by every driftfield package.
//
// It defines the domain errors returned at the edges of the simulation
// (configuration, scenarios, viewport handling) and the worker split used
// to spread per-particle force evaluation:
//
//   - [ErrEmptyViewport]: a zero or negative viewport dimension
//   - [ConfigError]: a named configuration field failed validation
//   - [ParallelFor]: splits [0, n) across a fixed number of goroutines
//
// The simulation core never returns errors while ticking. Degenerate
// inputs (zero distances, off-canvas pointer, expired shockwaves) simply
// contribute nothing.
package dynamo
