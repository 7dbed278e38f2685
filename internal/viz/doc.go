// Package viz is the terminal host for the particle field.
//
// The live view draws the field on a braille [Canvas] and feeds terminal
// events back into the simulation loop:
//
//   - mouse motion moves the pointer, leaving the canvas removes it
//   - left click triggers a shockwave
//   - the wheel scrolls the virtual host section, dispersing the field
//   - focus and blur pause and resume the loop
//   - window resizes regenerate the population
//
// # Key Bindings
//
//	Space - Hide/show the field (pauses the loop)
//	C     - Shockwave at the centre
//	R     - Regenerate the population
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
