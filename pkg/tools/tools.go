// Package tools translates discovered tool descriptors into the function-calling
// format of the chat completions API.
package tools

import (
	"encoding/json"

	"github.com/openai/openai-go"
)

// Descriptor describes one tool advertised by the tool server.
type Descriptor struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the accepted arguments, as advertised.
	Parameters map[string]any
}

// Registry holds the tool definitions offered to the model for a session.
// It is read-only after construction.
type Registry struct {
	descriptors []Descriptor
	index       map[string]int
	params      []openai.ChatCompletionToolParam
}

type toolResponse struct {
	OK   bool   `json:"ok"`
	Tool string `json:"tool,omitempty"`
	Err  string `json:"error,omitempty"`
}

// NewRegistry builds a registry with one definition per descriptor, in
// discovery order. Names, descriptions and schemas are passed through as is.
func NewRegistry(descriptors []Descriptor) *Registry {
	r := &Registry{
		descriptors: append([]Descriptor(nil), descriptors...),
		index:       make(map[string]int, len(descriptors)),
	}
	for i, d := range r.descriptors {
		if _, dup := r.index[d.Name]; !dup {
			r.index[d.Name] = i
		}
		r.params = append(r.params, definition(d))
	}
	return r
}

func definition(d Descriptor) openai.ChatCompletionToolParam {
	fn := openai.FunctionDefinitionParam{
		Name: d.Name,
	}
	if d.Description != "" {
		fn.Description = openai.String(d.Description)
	}
	if d.Parameters != nil {
		fn.Parameters = openai.FunctionParameters(d.Parameters)
	}
	return openai.ChatCompletionToolParam{Function: fn}
}

// Definitions returns a copy of the tool definitions for the chat completions
// API. It returns nil for an empty registry so that no tools are offered.
func (r *Registry) Definitions() []openai.ChatCompletionToolParam {
	if r == nil || len(r.params) == 0 {
		return nil
	}
	return append([]openai.ChatCompletionToolParam(nil), r.params...)
}

// Descriptors returns a copy of the discovered descriptors.
func (r *Registry) Descriptors() []Descriptor {
	if r == nil {
		return nil
	}
	return append([]Descriptor(nil), r.descriptors...)
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.descriptors)
}

// ErrorResult encodes a failed tool call as the JSON payload sent back to the model.
func ErrorResult(toolName string, err error) string {
	resp := toolResponse{
		OK:   false,
		Tool: toolName,
	}
	if err != nil {
		resp.Err = err.Error()
	}
	payload, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return `{"ok":false}`
	}
	return string(payload)
}
