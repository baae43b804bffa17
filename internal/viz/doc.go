// Package viz renders navigation runs.
//
//   - [PlotRun]: asciigraph charts of pose and wheel commands over time
//   - [SavePathPNG]: top-down path image through gonum/plot
//   - [Live]: Bubble Tea view that closes the loop on screen
//   - [Canvas]: Braille pixel canvas used by the live view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
