// Package profile draws an assembled section as a cross-section SVG.
//
// Each column becomes a vertical bar spanning its plotting extent (see
// section.Extents) from its surface level down to its depth. The surface
// level and, where known, the groundwater level are joined across column
// centres:
//
//	svg := profile.RenderSVG(s, line, profile.WithX0(0), profile.WithSize(960, 420))
//
// A column's depth is read from the numeric "depth" payload key and falls
// back to [DefaultDepth]. Depth is measured downwards from the surface
// level Z, in the same unit as Z.
package profile
