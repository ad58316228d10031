// Package arbor is the interaction and animation state engine for a
// projected 3D particle-tree installation.
//
// The engine owns a few thousand particles arranged into a tree, a scatter
// sphere, and (during the finale) a text glyph cloud; a deck of visitor
// photo cards; an orbit camera; and the display-mode state machine that
// chooses between them. Two mutually exclusive input sources drive it: a
// multi-touch surface and a camera-based hand-gesture classifier. Both
// normalize into the same [Signal] stream, so the rest of the engine neither
// knows nor cares which one the visitor used.
//
// # Quick start
//
//	engine, err := arbor.NewEngine(nil) // nil means DefaultConfig
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close()
//
//	for {
//		engine.Pointer(0, x, y, pressed) // feed input
//		engine.Tick(1.0 / 60)            // advance one frame
//	}
//
// Each [Engine.Tick] advances everything one step in a fixed order and hands
// a [FrameSnapshot] to the installed [RenderSink]. The frontend package
// draws snapshots in an Ebitengine window; the console package is a
// terminal dashboard for operators.
//
// # Animation model
//
// Every particle carries one precomputed target position per display mode
// and eases toward the active one exponentially, so mode changes are a
// target swap, never a teleport. The epic sequence, a fixed 18-second
// celebration triggered by a hold-to-confirm, temporarily retargets eligible
// particles onto the glyph cloud and takes the camera over while it runs.
//
// # Configuration
//
// All tuning lives in [Config], serialized as YAML. [DefaultConfig] is the
// installation's stock tuning; [LoadConfig] layers a partial file over it.
package arbor
