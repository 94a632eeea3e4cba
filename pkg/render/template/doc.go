// Package template defines the engine-agnostic seam page renderers use. The
// pongo2 implementation lives in the pongo subpackage.
package template
