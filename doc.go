// Package strata provides the geometry and pixel primitives shared by the
// layer transform and compositing engine of a layered 2D document editor.
//
// The root package is deliberately small: points, affine matrices, integer
// rectangles, straight-alpha RGBA colors, and the Pixmap raster surface.
// The engine itself lives in the subpackages:
//
//   - layer: per-layer state, transforms, effect/filter stacks, versioning
//   - document: the ordered layer hierarchy with groups
//   - fx: the non-destructive effect renderer (behind/content surfaces)
//   - compositor: the poll-driven render loop with pan/zoom viewport
//
// Logging is silent by default; call [SetLogger] to enable it.
package strata
