// Package engine animates the organism.
//
// An [Engine] owns a single [LiveState], fixed pools of particles, energy
// waves and helix points, and a simulation clock that advances by the current
// pulse speed on every frame. Drawing goes through a [Surface] in logical
// coordinates; the surface maps them to device pixels.
//
//   - [Engine.Initialize]: attach a surface and scheduler, allocate pools, start the loop
//   - [Engine.PushExternalState]: merge a [Partial] parameter update
//   - [Engine.RenderFrame]: advance and draw one frame, then reschedule
//   - [Engine.FrameRate]: rolling frames per second
//
// # Threading
//
// The engine is not safe for concurrent use. The host must serialize
// RenderFrame and PushExternalState, for example by calling both from a
// bubbletea Update loop. Updates from other goroutines should be funneled
// through a channel and applied on that loop.
package engine
