// Package viz renders runs and reports in the terminal.
//
//   - [Live]: Bubble Tea viewer for a running integration, fed through
//     a [Starter] frame stream
//   - [Canvas]: braille dot canvas the particle scatter draws on
//   - [PlotSeries], [PlotTogether]: asciigraph charts for report series
//   - [RenderReport]: pass/fail badge plus scalar table for a report
//
// # Key Bindings
//
//	Space - pause/resume (the paused run blocks on its frame channel)
//	R     - restart the run from fresh initial conditions
//	Q     - quit
package viz
