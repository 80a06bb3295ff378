// Package viz renders a running MHD simulation in the terminal.
//
// [Model] is a Bubble Tea model that advances the simulation one step per
// tick and draws the selected field as a colored heatmap, next to a stats
// panel and a graph of the timestep history.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single step while paused
//	F     - Cycle the displayed field
//	T     - Cycle colormaps
//	R     - Restart from the initial conditions
//	?     - Show help overlay
//	Q     - Quit
package viz
