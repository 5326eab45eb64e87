package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryPoints = `
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`

func TestIncludeIsSpliced(t *testing.T) {
	fsys := fstest.MapFS{
		"main.wgsl":          {Data: []byte("#include \"common/camera.wgsl\"\nfn main_body() {}\n")},
		"common/camera.wgsl": {Data: []byte("struct Camera { view_proj: mat4x4<f32> }\n")},
	}

	out, err := NewPreProcessor(fsys).Process("main.wgsl")
	require.NoError(t, err)
	assert.Contains(t, out, "struct Camera")
	assert.NotContains(t, out, "#include")
	assert.Less(t, strings.Index(out, "struct Camera"), strings.Index(out, "fn main_body"))
}

func TestIncludeResolvesRelativeToIncludingFile(t *testing.T) {
	fsys := fstest.MapFS{
		"main.wgsl":  {Data: []byte("#include \"lib/a.wgsl\"\n")},
		"lib/a.wgsl": {Data: []byte("#include \"b.wgsl\";\n")},
		"lib/b.wgsl": {Data: []byte("const B = 1;\n")},
	}

	pp := NewPreProcessor(fsys)
	out, err := pp.Process("main.wgsl")
	require.NoError(t, err)
	assert.Contains(t, out, "const B = 1;")
	assert.Equal(t, []string{"main.wgsl", "lib/a.wgsl", "lib/b.wgsl"}, pp.Includes())
}

func TestIncludeCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl": {Data: []byte("#include \"b.wgsl\"\n")},
		"b.wgsl": {Data: []byte("#include \"a.wgsl\"\n")},
	}

	_, err := NewPreProcessor(fsys).Process("a.wgsl")
	assert.ErrorIs(t, err, ErrIncludeCycle)
}

func TestDefineSubstitutesWholeWords(t *testing.T) {
	src := "#define CHUNK_SIZE<f32> 64.0;\nlet a = CHUNK_SIZE * 2.0;\nlet b = CHUNK_SIZE_HALF;\n"

	out, err := NewPreProcessor(fstest.MapFS{}).ProcessSource("inline.wgsl", src)
	require.NoError(t, err)
	assert.Contains(t, out, "let a = f32(64.0) * 2.0;")
	assert.Contains(t, out, "let b = CHUNK_SIZE_HALF;")
	assert.NotContains(t, out, "#define")
}

func TestDefineIsLocalToItsFile(t *testing.T) {
	fsys := fstest.MapFS{
		"main.wgsl": {Data: []byte("#include \"lib.wgsl\"\nlet outer = SCALE;\n")},
		"lib.wgsl":  {Data: []byte("#define SCALE<u32> 4\nlet inner = SCALE;\n")},
	}

	out, err := NewPreProcessor(fsys).Process("main.wgsl")
	require.NoError(t, err)
	assert.Contains(t, out, "let inner = u32(4);")
	assert.Contains(t, out, "let outer = SCALE;")
}

func TestGlobalDefine(t *testing.T) {
	out, err := NewPreProcessor(fstest.MapFS{}, WithDefine("MAX_LIGHTS", "u32", "8")).
		ProcessSource("x.wgsl", "for (var i = 0u; i < MAX_LIGHTS; i++) {}\n")
	require.NoError(t, err)
	assert.Contains(t, out, "i < u32(8)")
}

func TestBadDirectives(t *testing.T) {
	pp := NewPreProcessor(fstest.MapFS{})

	_, err := pp.ProcessSource("x.wgsl", "#define BROKEN 1\n")
	assert.ErrorIs(t, err, ErrBadDirective)

	_, err = pp.ProcessSource("x.wgsl", "#pragma once\n")
	assert.ErrorIs(t, err, ErrBadDirective)

	_, err = pp.ProcessSource("x.wgsl", "#include \"missing.wgsl\"\n")
	assert.Error(t, err)
}

func TestLoadValidatesEntryPoints(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.wgsl":        {Data: []byte(entryPoints)},
		"nofrag.wgsl":    {Data: []byte("@vertex fn vs_main() {}\n")},
		"commented.wgsl": {Data: []byte("@vertex fn vs_main() {}\n// @fragment fn fs_main() {}\n")},
	}
	pp := NewPreProcessor(fsys)

	s, err := Load(pp, "ok", "ok.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "ok.wgsl", s.Path())
	assert.True(t, s.DependsOn("ok.wgsl"))

	_, err = Load(pp, "nofrag", "nofrag.wgsl")
	assert.ErrorIs(t, err, ErrMissingEntryPoint)

	_, err = Load(pp, "commented", "commented.wgsl")
	assert.ErrorIs(t, err, ErrMissingEntryPoint)
}

func TestBindingDeclarations(t *testing.T) {
	src := entryPoints + `
@group(1) @binding(0) var<storage, read> lights: array<Light>;
@group(0) @binding(0) var<uniform> camera: CameraUniform;
/* @group(5) @binding(0) var<uniform> ignored: Foo; */
@group(2) @binding(1) var<storage, read> material_b: Material;
@group(2) @binding(0) var<storage, read> material_a: Material;
`
	s, err := NewShader("mesh", src)
	require.NoError(t, err)

	decls := s.Bindings()
	require.Len(t, decls, 4)
	assert.Equal(t, BindingDecl{Group: 0, Binding: 0, AddressSpace: "uniform", Name: "camera", Type: "CameraUniform"}, decls[0])
	assert.Equal(t, "lights", decls[1].Name)
	assert.Equal(t, "array<Light>", decls[1].Type)
	assert.Equal(t, "material_a", decls[2].Name)
	assert.Equal(t, "material_b", decls[3].Name)
	assert.Equal(t, 3, s.GroupCount())
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mesh.wgsl")
	require.NoError(t, os.WriteFile(file, []byte(entryPoints), 0o644))

	w, err := NewWatcher(dir, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(file, []byte(entryPoints+"\n"), 0o644))

	assert.Eventually(t, func() bool {
		for _, name := range w.Changed() {
			if name == "mesh.wgsl" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
