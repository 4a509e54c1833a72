// Package render groups the section renderers.
//
//   - [overlay]: plan view of the line and the columns, rendered with Graphviz
//   - [profile]: the cross-section itself as a standalone SVG
//
// Both take an assembled section and the line it was built on; neither
// reorders or reprojects columns.
//
// [overlay]: github.com/matzehuels/geoprofile/pkg/render/overlay
// [profile]: github.com/matzehuels/geoprofile/pkg/render/profile
package render
