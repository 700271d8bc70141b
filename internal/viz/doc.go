// Package viz hosts the animation engine in a terminal.
//
// [Canvas] is a half-block RGB pixel buffer that implements engine.Surface,
// so every frame the engine composites lands directly in the terminal. The
// bubbletea [Model] drives frames from a tea.Tick loop and feeds metric
// updates into the engine as they arrive.
//
// # Key Bindings
//
//	Space - Pause/Resume frames
//	P     - Hold/Resume metric sampling
//	G     - Toggle GIF recording
//	H     - Toggle the side panel
//	T     - Cycle panel themes
//	?     - Show full help
//	Q     - Quit
//
// # Recording
//
// Live recordings are saved to the current directory as
// sentinel_<session>.gif. [Record] renders a fixed number of frames
// off-screen without a terminal.
package viz
