package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// Stage is a bit set of shader stages.
type Stage uint8

const (
	StageVertex Stage = 1 << iota
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	var parts []string
	if s&StageVertex != 0 {
		parts = append(parts, "vertex")
	}
	if s&StageFragment != 0 {
		parts = append(parts, "fragment")
	}
	if s&StageCompute != 0 {
		parts = append(parts, "compute")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// wgslVertexFormatMap maps the WGSL types usable as batched vertex attributes to their vertex format.
var wgslVertexFormatMap = map[string]renderer.VertexFormat{
	"f32":       renderer.VertexFormatFloat32,
	"vec2f":     renderer.VertexFormatFloat32x2,
	"vec2<f32>": renderer.VertexFormatFloat32x2,
	"vec3f":     renderer.VertexFormatFloat32x3,
	"vec3<f32>": renderer.VertexFormatFloat32x3,
	"vec4f":     renderer.VertexFormatFloat32x4,
	"vec4<f32>": renderer.VertexFormatFloat32x4,
	"u32":       renderer.VertexFormatUint32,
	"i32":       renderer.VertexFormatSint32,
}

// wgslTextureViewMap maps WGSL sampled and depth texture base names to their view dimension and multisampled flag
var wgslTextureViewMap = map[string]textureViewInfo{
	"texture_1d":                    {"1d", false},
	"texture_2d":                    {"2d", false},
	"texture_2d_array":              {"2d_array", false},
	"texture_3d":                    {"3d", false},
	"texture_cube":                  {"cube", false},
	"texture_cube_array":            {"cube_array", false},
	"texture_multisampled_2d":       {"2d", true},
	"texture_depth_2d":              {"2d", false},
	"texture_depth_2d_array":        {"2d_array", false},
	"texture_depth_cube":            {"cube", false},
	"texture_depth_cube_array":      {"cube_array", false},
	"texture_depth_multisampled_2d": {"2d", true},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex captures the name and the parameter list of a @vertex function
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\s+fn\s+(\w+)\s*\((.*?)\)\s*(?:->|\{)`)

	// fragmentEntryRegex captures the name of a @fragment function
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\s+fn\s+(\w+)`)

	// computeEntryRegex captures the name of a @compute function, which may carry @workgroup_size first
	computeEntryRegex = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> view: ViewUniform;
	// or handle types: @group(1) @binding(0) var texture0: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parsedModule is everything reflected from one pre-processed WGSL module.
type parsedModule struct {
	vertexEntry   string
	fragmentEntry string
	computeEntry  string
	vertexInputs  []VertexInput
	bindings      []Binding
	structSizes   map[string]wgslTypeLayout
}

func (m parsedModule) stages() Stage {
	var s Stage
	if m.vertexEntry != "" {
		s |= StageVertex
	}
	if m.fragmentEntry != "" {
		s |= StageFragment
	}
	if m.computeEntry != "" {
		s |= StageCompute
	}
	return s
}

// parseModule reflects entry points, the vertex input layout and every resource binding of a WGSL module.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - parsedModule: the reflected module
func parseModule(source string) parsedModule {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	m := parsedModule{
		structSizes: computeStructSizes(structs),
	}
	var vertexParams string
	if match := vertexEntryRegex.FindStringSubmatch(cleaned); match != nil {
		m.vertexEntry = match[1]
		vertexParams = match[2]
	}
	if match := fragmentEntryRegex.FindStringSubmatch(cleaned); match != nil {
		m.fragmentEntry = match[1]
	}
	if match := computeEntryRegex.FindStringSubmatch(cleaned); match != nil {
		m.computeEntry = match[1]
	}
	if m.vertexEntry != "" {
		m.vertexInputs = parseVertexInputs(vertexParams, structs)
	}
	m.bindings = parseBindings(cleaned, m.structSizes, m.stages())
	return m
}

// parseVertexInputs resolves the @location inputs of the vertex entry point. Inputs are read from the
// struct type of the entry point's parameter when it has one, or from @location parameters directly.
// Inputs are returned sorted by location.
//
// Parameters:
//   - params: the raw parameter list of the vertex entry point
//   - structs: every struct declared in the module
//
// Returns:
//   - []VertexInput: the vertex inputs, nil if the entry point takes none
func parseVertexInputs(params string, structs []parsedStruct) []VertexInput {
	var fields []parsedField
	for _, p := range parseStructFields(params) {
		if p.isBuiltin {
			continue
		}
		if p.location >= 0 {
			fields = append(fields, p)
			continue
		}
		for _, ps := range structs {
			if ps.name == p.typeName && isVertexInputStruct(ps) {
				fields = append(fields, ps.fields...)
			}
		}
	}

	var inputs []VertexInput
	for _, f := range fields {
		if f.isBuiltin || f.location < 0 {
			continue
		}
		format, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			format = renderer.VertexFormat(-1)
		}
		inputs = append(inputs, VertexInput{Name: f.name, Location: f.location, Format: format})
	}
	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].Location < inputs[j].Location
	})
	return inputs
}

// parseBindings extracts all @group(N) @binding(M) resource declarations, sorted by group then binding.
// Buffer bindings get their minimum size resolved from the module's structs.
//
// Parameters:
//   - cleaned: WGSL source with comments stripped
//   - structSizes: the resolved layouts of the module's structs
//   - stages: the visibility assigned to every binding
//
// Returns:
//   - []Binding: the resource bindings
func parseBindings(cleaned string, structSizes map[string]wgslTypeLayout, stages Stage) []Binding {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	bindings := make([]Binding, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		b := Binding{
			Group:   group,
			Binding: binding,
			Name:    strings.TrimSpace(match[4]),
			Type:    strings.TrimSpace(match[5]),
			Stages:  stages,
		}
		classifyResource(&b, strings.TrimSpace(match[3]))

		if b.IsBuffer() {
			if layout, ok := resolveTypeLayout(b.Type, structSizes); ok {
				b.Size = layout.size
			}
		}
		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Binding < bindings[j].Binding
	})
	return bindings
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses a comma separated field list (a struct body or a function parameter list),
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the fields to parse
//
// Returns:
//   - []parsedField: all fields found
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}

	return fields
}
