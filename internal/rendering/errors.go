// Package rendering turns tailored profiles into preview markup and print-ready PDFs.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a markup template
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error (%s): %s: %v", e.Template, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error (%s): %s", e.Template, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a failure of the rendering engine or of the document
// it produced. It is never recovered locally.
type RenderError struct {
	Kind    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("render error (%s): %s", e.Kind, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
