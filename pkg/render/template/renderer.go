package template

import (
	"io"
)

// Filter transforms a template value. param is nil when the template passes
// no argument.
type Filter func(input any, param any) (any, error)

// TemplateRenderer is the contract page renderers depend on. Nothing is
// written to w when rendering fails.
type TemplateRenderer interface {
	RenderTemplate(w io.Writer, name string, data any) error
	RegisterFilter(name string, fn Filter) error
}
