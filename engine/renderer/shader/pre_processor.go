// pre_processor.go implements the shader text pre-processor. Two directives are understood:
//
//	#include "relative/path.wgsl"
//	#define NAME<type> value
//
// An include is replaced by the fully processed text of the named file, resolved relative
// to the including file. A define line is removed, and every later whole-word occurrence of
// NAME in the same file (included text counts) becomes type(value). Defines registered on
// the pre-processor itself apply to every file.
package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

var (
	// ErrIncludeCycle is returned when a file includes itself, directly or indirectly.
	ErrIncludeCycle = errors.New("shader include cycle")

	// ErrBadDirective is returned for a malformed or unknown # directive.
	ErrBadDirective = errors.New("malformed shader directive")
)

var (
	// includeRegex captures the path of #include "path" or #include path;
	includeRegex = regexp.MustCompile(`^\s*#include\s+"?([^";\s]+)"?\s*;?\s*$`)

	// defineRegex captures name, type and value of #define NAME<type> value;
	defineRegex = regexp.MustCompile(`^\s*#define\s+(\w+)\s*<\s*(\w+)\s*>\s*:?\s*([^;\s]+)\s*;?\s*$`)

	// directiveRegex matches any line that starts with a # directive
	directiveRegex = regexp.MustCompile(`^\s*#(\w+)`)
)

// Define is a named constant substituted into shader text as Type(Value).
type Define struct {
	Name  string
	Type  string
	Value string
}

func (d Define) expansion() string {
	return fmt.Sprintf("%s(%s)", d.Type, d.Value)
}

// PreProcessor expands #include and #define directives in shader files read from a file system.
type PreProcessor interface {
	// Process reads the file at name and returns its expanded source.
	//
	// Parameters:
	//   - name: slash-separated path of the file inside the pre-processor's file system
	//
	// Returns:
	//   - string: the expanded source
	//   - error: a read failure, a malformed directive, or an include cycle
	Process(name string) (string, error)

	// ProcessSource expands directives in source as if it were the file at name.
	ProcessSource(name, source string) (string, error)

	// Includes returns every file read by the most recent Process call, root first.
	// The shader watcher uses this to map a changed include back to its root shader.
	Includes() []string
}

type preProcessor struct {
	fsys     fs.FS
	globals  []Define
	includes []string
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption configures a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithDefine registers a define that applies to every processed file, as if each file began
// with #define name<typ> value.
func WithDefine(name, typ, value string) PreProcessorOption {
	return func(p *preProcessor) {
		p.globals = append(p.globals, Define{Name: name, Type: typ, Value: value})
	}
}

// NewPreProcessor creates a PreProcessor reading from fsys.
//
// Parameters:
//   - fsys: the file system holding the shader sources, usually os.DirFS(shaderDir)
//   - options: global defines
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(fsys fs.FS, options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{fsys: fsys}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(name string) (string, error) {
	p.includes = p.includes[:0]
	out, err := p.expandFile(name, nil)
	if err != nil {
		return "", err
	}
	return substitute(out, p.globals), nil
}

func (p *preProcessor) ProcessSource(name, source string) (string, error) {
	p.includes = append(p.includes[:0], name)
	out, err := p.expand(name, source, []string{name})
	if err != nil {
		return "", err
	}
	return substitute(out, p.globals), nil
}

func (p *preProcessor) Includes() []string {
	return p.includes
}

func (p *preProcessor) expandFile(name string, stack []string) (string, error) {
	for _, s := range stack {
		if s == name {
			return "", fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, strings.Join(stack, " -> "), name)
		}
	}
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read shader %q: %w", name, err)
	}
	p.includes = append(p.includes, name)
	return p.expand(name, string(data), append(stack, name))
}

func (p *preProcessor) expand(name, source string, stack []string) (string, error) {
	var sb strings.Builder
	var defines []Define
	dir := path.Dir(name)

	for i, line := range strings.Split(source, "\n") {
		directive := directiveRegex.FindStringSubmatch(line)
		if directive == nil {
			sb.WriteString(line)
			sb.WriteByte('\n')
			continue
		}

		switch directive[1] {
		case "include":
			m := includeRegex.FindStringSubmatch(line)
			if m == nil {
				return "", fmt.Errorf("%s:%d: %w: %q", name, i+1, ErrBadDirective, line)
			}
			included, err := p.expandFile(path.Join(dir, m[1]), stack)
			if err != nil {
				return "", fmt.Errorf("%s:%d: %w", name, i+1, err)
			}
			sb.WriteString(included)
		case "define":
			m := defineRegex.FindStringSubmatch(line)
			if m == nil {
				return "", fmt.Errorf("%s:%d: %w: %q", name, i+1, ErrBadDirective, line)
			}
			defines = append(defines, Define{Name: m[1], Type: m[2], Value: m[3]})
		default:
			return "", fmt.Errorf("%s:%d: %w: unknown directive #%s", name, i+1, ErrBadDirective, directive[1])
		}
	}

	return substitute(sb.String(), defines), nil
}

// substitute replaces whole-word occurrences of each define's name with its expansion.
func substitute(source string, defines []Define) string {
	for _, d := range defines {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(d.Name) + `\b`)
		source = re.ReplaceAllLiteralString(source, d.expansion())
	}
	return source
}
