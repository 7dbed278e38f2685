// Package analysis characterises per-tick series recorded from a run.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of a series
//     around its mean, such as particles ringing on their home springs
//   - [SettleIndex]: the sample after which a series stays near zero,
//     such as kinetic energy after a shockwave
//
// # Example
//
//	hz, _ := analysis.DominantFrequency(kinetic, 60)
//	settle := analysis.SettleIndex(kinetic, 0.05)
package analysis
