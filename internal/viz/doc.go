// Package viz is the terminal front end for the bubble chart.
//
// A [Model] runs a chart inside Bubble Tea and draws the scene onto a
// braille [Canvas], with a side panel showing the layout phase, an alpha
// plot and the tooltip of the selected bubble.
//
// # Key Bindings
//
//	a / y     - All / by-year layout
//	m         - Cycle layout modes
//	Tab       - Hover next bubble (Shift+Tab for previous)
//	Esc       - Clear hover
//	Space     - Pause/Resume
//	r         - Reheat the layout
//	t         - Cycle themes
//	?         - Toggle full help
package viz
