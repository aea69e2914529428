// Package tempo is a tween and timeline engine for Go programs that animate
// values over time: game objects, terminal UIs, simulations.
//
// Tempo interpolates numbers, numbers with units, compound strings such as
// "translate(10px, 20px)" and colors on arbitrary targets: structs reached by
// reflection, maps, or anything that registers a resolver. Animations nest
// into timelines and are driven by a single clock.
//
// # Quick start
//
// Create an [Engine] and advance it once per frame:
//
//	eng := tempo.New()
//	box := &Box{X: 0}
//	eng.To(box, tempo.Props{"X": 100}, 1, tempo.Ease("power2.out"))
//
//	for range 60 {
//		eng.Tick(1.0 / 60)
//	}
//
// With [Ebitengine], the ebitenhost package calls Tick from Update.
//
// # Timelines
//
// A [Timeline] sequences children on its own local time. Positions accept
// absolute seconds, labels and relative forms:
//
//	tl := eng.Timeline(tempo.Repeat(1), tempo.Yoyo(true))
//	tl.To(box, tempo.Props{"X": 100}, 1).
//		To(box, tempo.Props{"Y": 50}, 0.5, tempo.At("<0.25")).
//		Call(func() { fmt.Println("done") }, tempo.At("+=0.5"))
//
// Every [Animation] (tweens and timelines alike) can be paused, reversed,
// seeked, re-scaled and killed. Lifecycle callbacks receive an [Event]; an
// [EventSink] receives every non-update event of the engine.
//
// # Eases
//
// Eases are looked up by name in the [EaseRegistry]: "linear", "power1" to
// "power4", the [gween] families ("quad", "cubic", "sine", "expo", "back",
// "elastic", "bounce", ...) with ".in", ".out", ".inOut" and ".outIn"
// variants, CSS names, and parametric forms "steps(5)",
// "cubicBezier(0.25,0.1,0.25,1)" and "spring(6,0.5)", the latter simulated
// with [harmonica].
//
// # Scripts
//
// [LoadScript] reads a YAML or JSON scenario that builds a timeline, drives
// the clock frame by frame and prints property samples. The tempo command
// runs these scripts.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [harmonica]: https://github.com/charmbracelet/harmonica
package tempo
