package shader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lelepado01/RenderingEngine/engine/renderer/pipeline"
)

// ErrMissingEntryPoint is returned when a shader lacks vs_main or fs_main.
var ErrMissingEntryPoint = errors.New("shader is missing a required entry point")

// shader is the implementation of the Shader interface.
type shader struct {
	key      string
	path     string
	source   string
	includes []string
	bindings []BindingDecl
}

// Shader is a pre-processed WGSL source carrying both the vs_main and fs_main entry points.
type Shader interface {
	// Key retrieves the identifier the shader was loaded under.
	Key() string

	// Path returns the root file the shader was read from, empty for in-memory sources.
	Path() string

	// Source retrieves the expanded WGSL source, ready for a pipeline builder.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Includes returns every file the shader was assembled from, root first.
	Includes() []string

	// Bindings returns the @group/@binding declarations found in the source, sorted by group
	// then binding.
	Bindings() []BindingDecl

	// GroupCount returns one past the highest declared group index, 0 if none.
	//
	// Returns:
	//   - int: the number of bind group layouts a pipeline for this shader must carry
	GroupCount() int

	// DependsOn reports whether name is the root file or one of its includes.
	DependsOn(name string) bool
}

var _ Shader = &shader{}

// Load reads and pre-processes the shader at name.
//
// Parameters:
//   - pp: the pre-processor, which also fixes the file system
//   - key: identifier for logging and pipeline labels
//   - name: path of the root file inside the pre-processor's file system
//
// Returns:
//   - Shader: the processed shader
//   - error: a pre-processing failure or a missing entry point
func Load(pp PreProcessor, key, name string) (Shader, error) {
	source, err := pp.Process(name)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	s, err := newShader(key, source)
	if err != nil {
		return nil, err
	}
	s.path = name
	s.includes = slices.Clone(pp.Includes())
	return s, nil
}

// NewShader wraps already expanded WGSL source.
//
// Parameters:
//   - key: identifier for logging and pipeline labels
//   - source: WGSL source exporting vs_main and fs_main
//
// Returns:
//   - Shader: the shader
//   - error: ErrMissingEntryPoint if either entry point is absent
func NewShader(key, source string) (Shader, error) {
	s, err := newShader(key, source)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newShader(key, source string) (*shader, error) {
	vertex, fragment := parseEntryPoints(source)
	if !slices.Contains(vertex, pipeline.VertexEntryPoint) {
		return nil, fmt.Errorf("shader %q: %w: @vertex fn %s", key, ErrMissingEntryPoint, pipeline.VertexEntryPoint)
	}
	if !slices.Contains(fragment, pipeline.FragmentEntryPoint) {
		return nil, fmt.Errorf("shader %q: %w: @fragment fn %s", key, ErrMissingEntryPoint, pipeline.FragmentEntryPoint)
	}
	return &shader{
		key:      key,
		source:   source,
		bindings: parseBindingDecls(source),
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Includes() []string {
	return s.includes
}

func (s *shader) Bindings() []BindingDecl {
	return s.bindings
}

func (s *shader) GroupCount() int {
	if len(s.bindings) == 0 {
		return 0
	}
	return int(s.bindings[len(s.bindings)-1].Group) + 1
}

func (s *shader) DependsOn(name string) bool {
	return slices.Contains(s.includes, name)
}
