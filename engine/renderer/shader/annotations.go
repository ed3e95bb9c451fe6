// annotations.go defines the annotation types, argument constants, and parser for the
// WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed with
// @oxy: that drive uniform struct injection, uniform block declaration, and texture slot
// assignment. The parsed results are stored as Annotation values and consumed by the
// PreProcessor and by the Shader reflection that backs renderer.Program.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered uniform struct at the
	// annotation site. It produces no declaration and is consumed during pre-processing.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include view
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration for a
	// registered struct and records it as a declaration. The variable name becomes the
	// uniform block name the renderer uploads to.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_type>
	//
	// Example: //@oxy:group 0 0 storage_uniform view view
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeSlot assigns a batch texture slot to a hand-written texture binding. The
	// WGSL declaration stays in the source directly below the annotation.
	//
	// Syntax: //@oxy:slot <group> <binding> <slot>
	//
	// Example: //@oxy:slot 1 0 0
	AnnotationTypeSlot AnnotationType = "slot"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = struct type key (e.g. "view")
	//   - group:   [0] = address space, [1] = var name, [2] = struct type key
	//   - slot:    empty, see Slot
	Args []AnnotationArg

	// Line is the 1-based line number in the WGSL source where this annotation was found.
	Line int

	// Group is the @group index for group and slot annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and slot annotations. Nil for include annotations.
	Binding *int

	// Slot is the texture slot index for slot annotations.
	Slot int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type in the renderer package with an embedded .wgsl asset.
const (
	// AnnotationArgView identifies the ViewUniform struct (model, projection, view).
	AnnotationArgView AnnotationArg = "view"

	// AnnotationArgLighting identifies the LightingUniform struct.
	AnnotationArgLighting AnnotationArg = "lighting"

	// AnnotationArgMaterial identifies the MaterialUniform struct.
	AnnotationArgMaterial AnnotationArg = "material"
)

// Address space arguments, mapped to WGSL var<> declarations.
const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// validStructTypes lists all AnnotationArg values accepted as struct types in include and group annotations.
var validStructTypes = []AnnotationArg{
	AnnotationArgView,
	AnnotationArgLighting,
	AnnotationArgMaterial,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, address space, var name, struct type)", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	case string(AnnotationTypeSlot):
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: @oxy slot annotation requires exactly three arguments (group, binding, slot)", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		slot, err := strconv.Atoi(args[3])
		if err != nil || slot < 0 {
			return nil, fmt.Errorf("line %d: invalid texture slot %q in @oxy slot annotation", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeSlot,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
			Slot:    slot,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
