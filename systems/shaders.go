package systems

import "fmt"

// UniformUpdate is a pending shader uniform write for one particle type.
// Value is forwarded untouched; the renderer decides how to upload it
// (float32, int32, or a []float32 of length 2-4).
type UniformUpdate struct {
	Type    string
	Uniform string
	Value   any
}

// ShaderBindings stores which fragment shader each particle type is drawn
// with and queues uniform updates for the renderer to apply.
type ShaderBindings struct {
	paths   map[string]string
	pending []UniformUpdate
}

// NewShaderBindings creates an empty binding set.
func NewShaderBindings() *ShaderBindings {
	return &ShaderBindings{paths: make(map[string]string)}
}

// Bind associates a shader file with a registered type.
func (s *ShaderBindings) Bind(reg *Registry, typeName, path string) error {
	if !reg.Has(typeName) {
		return fmt.Errorf("binding shader %s: %q: %w", path, typeName, ErrNotFound)
	}
	s.paths[typeName] = path
	return nil
}

// Path returns the shader bound to a type.
func (s *ShaderBindings) Path(typeName string) (string, bool) {
	p, ok := s.paths[typeName]
	return p, ok
}

// Len returns the number of bound types.
func (s *ShaderBindings) Len() int {
	return len(s.paths)
}

// SetUniform queues a uniform update for the shader bound to typeName.
func (s *ShaderBindings) SetUniform(typeName, uniform string, value any) error {
	if _, ok := s.paths[typeName]; !ok {
		return fmt.Errorf("setting uniform %s: no shader for %q: %w", uniform, typeName, ErrNotFound)
	}
	s.pending = append(s.pending, UniformUpdate{Type: typeName, Uniform: uniform, Value: value})
	return nil
}

// Drain returns and clears the queued updates in submission order.
func (s *ShaderBindings) Drain() []UniformUpdate {
	out := s.pending
	s.pending = nil
	return out
}
