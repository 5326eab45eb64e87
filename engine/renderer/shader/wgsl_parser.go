package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// BindingDecl is one @group/@binding resource declaration found in shader source.
type BindingDecl struct {
	Group        uint32
	Binding      uint32
	AddressSpace string
	Name         string
	Type         string
}

// parseEntryPoints returns every @vertex and @fragment function name in source, in that order.
func parseEntryPoints(source string) (vertex, fragment []string) {
	cleaned := stripComments(source)
	for _, m := range vertexEntryRegex.FindAllStringSubmatch(cleaned, -1) {
		vertex = append(vertex, m[1])
	}
	for _, m := range fragmentEntryRegex.FindAllStringSubmatch(cleaned, -1) {
		fragment = append(fragment, m[1])
	}
	return vertex, fragment
}

// parseBindingDecls returns the resource declarations of source sorted by group then binding.
func parseBindingDecls(source string) []BindingDecl {
	cleaned := stripComments(source)
	var decls []BindingDecl
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		binding, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			continue
		}
		decls = append(decls, BindingDecl{
			Group:        uint32(group),
			Binding:      uint32(binding),
			AddressSpace: strings.TrimSpace(m[3]),
			Name:         m[4],
			Type:         strings.TrimSpace(m[5]),
		})
	}
	slices.SortStableFunc(decls, func(a, b BindingDecl) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Binding) - int(b.Binding)
	})
	return decls
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments, which WGSL allows to nest.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
