// Package shader loads WGSL programs and reflects the metadata the batching layer and the wgpu backend
// need: entry points, the vertex input layout, uniform blocks, and the texture slot table.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// SpriteSource is the WGSL source of the built-in sprite program: SpriteVertexSchema input, the view,
// lighting and material uniform blocks in group 0, and SpriteTextureSlots textures in group 1.
//
//go:embed assets/sprite.wgsl
var SpriteSource string

// SpriteTextureSlots is the number of textures one draw of the sprite program can sample.
const SpriteTextureSlots = 8

var (
	// ErrMissingEntryPoint is returned when a source lacks a @vertex or @fragment function.
	ErrMissingEntryPoint = errors.New("shader: missing entry point")

	// ErrTextureSlots is returned when the texture slot table is malformed.
	ErrTextureSlots = errors.New("shader: invalid texture slots")

	// ErrSchemaMismatch is returned by Validate when a vertex schema cannot feed the program's vertex inputs.
	ErrSchemaMismatch = errors.New("shader: vertex schema mismatch")
)

// Shader is a pre-processed and reflected WGSL render program. It is the renderer.Program the batching
// layer groups quads by.
type Shader interface {
	renderer.Program

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source with annotations expanded
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	FragmentEntryPoint() string

	// Stages returns every stage the module has an entry point for.
	Stages() Stage

	// VertexInputs returns the @location inputs of the vertex entry point, sorted by location.
	VertexInputs() []VertexInput

	// Bindings returns every resource binding, sorted by group then binding.
	Bindings() []Binding

	// Groups returns the bind group indices the program declares, ascending.
	Groups() []int

	// GroupBindings returns the resource bindings of one bind group, sorted by binding.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - []Binding: the bindings of the group, nil if the group is not declared
	GroupBindings(group int) []Binding

	// UniformBlock looks up a uniform buffer binding by its block (variable) name.
	//
	// Parameters:
	//   - name: the uniform block name
	//
	// Returns:
	//   - Binding: the binding declaring the block
	//   - bool: false if the program does not declare the block
	UniformBlock(name string) (Binding, bool)

	// TextureGroup returns the bind group holding the slot textures, or -1 if the program samples none.
	TextureGroup() int

	// TextureBinding returns the texture binding a batch slot is sampled from.
	//
	// Parameters:
	//   - slot: the zero-based batch texture slot
	//
	// Returns:
	//   - Binding: the texture binding
	//   - bool: false if the slot is out of range
	TextureBinding(slot int) (Binding, bool)

	// Validate checks that a vertex schema provides every vertex input of the program at the same
	// location and with the same format.
	//
	// Parameters:
	//   - schema: the vertex schema the program will be fed with
	//
	// Returns:
	//   - error: ErrSchemaMismatch wrapped with the offending input, or nil
	Validate(schema renderer.VertexSchema) error

	// Declarations returns the group and slot annotations parsed from the source.
	Declarations() []Annotation
}

type shader struct {
	key          string
	source       string
	module       parsedModule
	uniforms     map[string]Binding
	slots        []Binding
	textureGroup int
	declarations []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and reflects a WGSL render program.
//
// Parameters:
//   - key: a unique identifier for the program, used for pipeline caching and logging
//   - source: the WGSL source, optionally carrying @oxy: annotations
//
// Returns:
//   - Shader: the reflected program
//   - error: an error if pre-processing fails, an entry point is missing or the texture slots are malformed
func NewShader(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		module:       parseModule(processed),
		uniforms:     make(map[string]Binding),
		textureGroup: -1,
		declarations: append([]Annotation(nil), pp.Declarations()...),
	}
	if s.module.vertexEntry == "" {
		return nil, fmt.Errorf("%w: %s has no @vertex function", ErrMissingEntryPoint, key)
	}
	if s.module.fragmentEntry == "" {
		return nil, fmt.Errorf("%w: %s has no @fragment function", ErrMissingEntryPoint, key)
	}

	for _, b := range s.module.bindings {
		if b.Kind == ResourceUniform {
			s.uniforms[b.Name] = b
		}
	}
	if err := s.resolveTextureSlots(); err != nil {
		return nil, fmt.Errorf("shader: %s: %w", key, err)
	}
	return s, nil
}

// NewShaderFromPath reads a WGSL file and passes it to NewShader.
//
// Parameters:
//   - key: a unique identifier for the program
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the reflected program
//   - error: an error if the file cannot be read or NewShader fails
func NewShaderFromPath(key, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", path, err)
	}
	return NewShader(key, string(data))
}

// NewSpriteShader returns a fresh instance of the built-in sprite program. Every call yields a distinct
// Program, so quads submitted with different instances land in different batches.
//
// Returns:
//   - Shader: the sprite program
func NewSpriteShader() Shader {
	s, err := NewShader("sprite", SpriteSource)
	if err != nil {
		panic(fmt.Sprintf("shader: built-in sprite program is invalid: %v", err))
	}
	return s
}

// resolveTextureSlots builds the slot table from @oxy:slot declarations. Without any, every sampled 2D
// texture of the lowest group declaring one becomes a slot, in binding order.
func (s *shader) resolveTextureSlots() error {
	byGroupBinding := make(map[[2]int]Binding, len(s.module.bindings))
	for _, b := range s.module.bindings {
		byGroupBinding[[2]int{b.Group, b.Binding}] = b
	}

	declared := make(map[int]Binding)
	for _, a := range s.declarations {
		if a.Type != AnnotationTypeSlot {
			continue
		}
		b, ok := byGroupBinding[[2]int{*a.Group, *a.Binding}]
		if !ok {
			return fmt.Errorf("%w: line %d: no binding at group %d binding %d", ErrTextureSlots, a.Line, *a.Group, *a.Binding)
		}
		if b.Kind != ResourceTexture {
			return fmt.Errorf("%w: line %d: %s is a %s, not a sampled texture", ErrTextureSlots, a.Line, b.Name, b.Kind)
		}
		if _, dup := declared[a.Slot]; dup {
			return fmt.Errorf("%w: line %d: slot %d declared twice", ErrTextureSlots, a.Line, a.Slot)
		}
		declared[a.Slot] = b
	}

	if len(declared) > 0 {
		s.slots = make([]Binding, len(declared))
		for slot, b := range declared {
			if slot >= len(declared) {
				return fmt.Errorf("%w: slots must be numbered 0..%d, got %d", ErrTextureSlots, len(declared)-1, slot)
			}
			s.slots[slot] = b
		}
	} else {
		group := -1
		for _, b := range s.module.bindings {
			if b.Kind != ResourceTexture || b.ViewDimension != "2d" || b.Multisampled {
				continue
			}
			if group == -1 {
				group = b.Group
			}
			if b.Group == group {
				s.slots = append(s.slots, b)
			}
		}
	}

	for _, b := range s.slots {
		if s.textureGroup == -1 {
			s.textureGroup = b.Group
		}
		if b.Group != s.textureGroup {
			return fmt.Errorf("%w: slot textures span groups %d and %d", ErrTextureSlots, s.textureGroup, b.Group)
		}
	}
	return nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) TextureSlotCount() int {
	return len(s.slots)
}

func (s *shader) TextureUnit(slot int) (int, bool) {
	if slot < 0 || slot >= len(s.slots) {
		return -1, false
	}
	return s.slots[slot].Binding, true
}

func (s *shader) HasUniformBlock(name string) bool {
	_, ok := s.uniforms[name]
	return ok
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.module.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.module.fragmentEntry
}

func (s *shader) Stages() Stage {
	return s.module.stages()
}

func (s *shader) VertexInputs() []VertexInput {
	return s.module.vertexInputs
}

func (s *shader) Bindings() []Binding {
	return s.module.bindings
}

func (s *shader) Groups() []int {
	var groups []int
	for _, b := range s.module.bindings {
		if len(groups) == 0 || groups[len(groups)-1] != b.Group {
			groups = append(groups, b.Group)
		}
	}
	return groups
}

func (s *shader) GroupBindings(group int) []Binding {
	var out []Binding
	for _, b := range s.module.bindings {
		if b.Group == group {
			out = append(out, b)
		}
	}
	return out
}

func (s *shader) UniformBlock(name string) (Binding, bool) {
	b, ok := s.uniforms[name]
	return b, ok
}

func (s *shader) TextureGroup() int {
	return s.textureGroup
}

func (s *shader) TextureBinding(slot int) (Binding, bool) {
	if slot < 0 || slot >= len(s.slots) {
		return Binding{}, false
	}
	return s.slots[slot], true
}

func (s *shader) Validate(schema renderer.VertexSchema) error {
	byLocation := make(map[int]renderer.VertexAttribute, schema.Len())
	for _, a := range schema.Attributes() {
		byLocation[a.Location] = a
	}
	for _, in := range s.module.vertexInputs {
		a, ok := byLocation[in.Location]
		if !ok {
			return fmt.Errorf("%w: %s: input %q at location %d has no attribute", ErrSchemaMismatch, s.key, in.Name, in.Location)
		}
		if a.Format != in.Format {
			return fmt.Errorf("%w: %s: input %q is %s, attribute %q is %s", ErrSchemaMismatch, s.key, in.Name, in.Format, a.Name, a.Format)
		}
	}
	return nil
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

// sortedUniformNames is used for deterministic logging of the declared uniform blocks.
func (s *shader) sortedUniformNames() []string {
	names := make([]string, 0, len(s.uniforms))
	for name := range s.uniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *shader) String() string {
	return fmt.Sprintf("shader(%s: %s, slots=%d, uniforms=%v)", s.key, s.Stages(), len(s.slots), s.sortedUniformNames())
}
