package loader

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeFaceOBJ = `# two quads sharing an edge
mtllib cube.mtl
o Front
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 2 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl blue
f 2//1 5//1 6//1 3//1
`

const cubeMTL = `newmtl red
Ka 0.1 0 0
Kd 0.8 0.1 0.1
Ks 0.5 0.5 0.5
Ns 32
newmtl blue
Kd 0.1 0.1 0.8
d 0.5
map_Kd -s 1 1 1 textures/blue.png
`

func TestLoadOBJWithMaterials(t *testing.T) {
	fsys := fstest.MapFS{
		"models/cube.obj": {Data: []byte(cubeFaceOBJ)},
		"models/cube.mtl": {Data: []byte(cubeMTL)},
	}
	l := NewLoader(fsys)

	asset, err := l.Load("models/cube.obj")
	require.NoError(t, err)

	assert.Equal(t, "cube", asset.Name)
	require.Len(t, asset.Materials, 2)
	red, blue := asset.Materials[0], asset.Materials[1]
	assert.Equal(t, "red", red.Name)
	assert.Equal(t, [4]float32{0.1, 0, 0, 1}, red.Ambient)
	assert.Equal(t, [4]float32{0.8, 0.1, 0.1, 1}, red.Diffuse)
	assert.Equal(t, float32(32), red.Shininess)
	assert.False(t, red.Textured())
	assert.Equal(t, float32(0.5), blue.Diffuse[3])
	assert.Equal(t, "textures/blue.png", blue.DiffuseTexture)
	assert.ErrorIs(t, blue.Validate(), model.ErrTexturedMaterialUnsupported)

	require.Len(t, asset.Meshes, 2)
	front := asset.Meshes[0]
	assert.Equal(t, "Front", front.Name)
	assert.Equal(t, 0, front.MaterialIndex)
	assert.Len(t, front.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, front.Indices)
	require.Len(t, front.Normals, 4)
	assert.Equal(t, [3]float32{0, 0, 1}, front.Normals[2])
	require.Len(t, front.TexCoords, 4)
	assert.Equal(t, [2]float32{1, 1}, front.TexCoords[2])

	side := asset.Meshes[1]
	assert.Equal(t, "Front", side.Name)
	assert.Equal(t, 1, side.MaterialIndex)
	assert.Empty(t, side.TexCoords)
	assert.Equal(t, [3]float32{2, 1, 0}, side.Positions[2])
}

func TestLoadCachesByPath(t *testing.T) {
	fsys := fstest.MapFS{"tri.obj": {Data: []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")}}
	l := NewLoader(fsys)

	first, err := l.Load("tri.obj")
	require.NoError(t, err)
	delete(fsys, "tri.obj")

	second, err := l.Load("tri.obj")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, l.Assets(), 1)
}

func TestWithAssetPrepopulates(t *testing.T) {
	a := model.Asset{Name: "procedural"}
	l := NewLoader(fstest.MapFS{}, WithAsset("gen", a))

	got, ok := l.Get("gen")
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestLoadReaderDefaultMaterial(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl missing\nf 1 2 3\ng second\nf 3 2 1\n"
	asset, err := NewLoader(fstest.MapFS{}).LoadReader("inline.obj", strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, asset.Materials, 1)
	assert.Equal(t, model.DefaultMaterial, asset.Materials[0])
	require.Len(t, asset.Meshes, 2)
	assert.Equal(t, 0, asset.Meshes[0].MaterialIndex)
	assert.Equal(t, 0, asset.Meshes[1].MaterialIndex)
	// normals are left for ComputeNormals when the file has none
	assert.Empty(t, asset.Meshes[0].Normals)
}

func TestMissingMaterialLibraryIsSkipped(t *testing.T) {
	src := "mtllib gone.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	asset, err := NewLoader(fstest.MapFS{}).LoadReader("a.obj", strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, asset.Materials, 1)
}

func TestNegativeIndicesAndFanTriangulation(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nv -1 0.5 0\nf -5 -4 -3 -2 -1\n"
	doc, err := parseOBJ("neg.obj", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.groups, 1)

	g := doc.groups[0].geometry(0)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, g.Indices)
	assert.Equal(t, [3]float32{-1, 0.5, 0}, g.Positions[4])
}

func TestVertexDedupByIndexTriple(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 1\nf 1/1 2/1 3/1\nf 1/2 3/1 2/1\n"
	doc, err := parseOBJ("dedup.obj", strings.NewReader(src))
	require.NoError(t, err)

	g := doc.groups[0].geometry(0)
	// 1/2 differs from 1/1 so position 0 appears twice
	assert.Len(t, g.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 3, 2, 1}, g.Indices)
}

func TestPartialNormalsAreDropped(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3\n"
	doc, err := parseOBJ("partial.obj", strings.NewReader(src))
	require.NoError(t, err)
	assert.Empty(t, doc.groups[0].geometry(0).Normals)
}

func TestParseErrorsCarryPosition(t *testing.T) {
	cases := map[string]string{
		"bad number":      "v 0 zero 0\n",
		"short vertex":    "v 0 0\n",
		"index past end":  "v 0 0 0\nf 1 2 3\n",
		"zero index":      "v 0 0 0\nv 0 0 0\nv 0 0 0\n\nf 0 1 2\n",
		"two corner face": "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad corner":      "v 0 0 0\nf 1/1/1/1 1 1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseOBJ("broken.obj", strings.NewReader(src))
			require.ErrorIs(t, err, ErrSyntax)
			lines := strings.Count(strings.TrimRight(src, "\n"), "\n") + 1
			assert.Contains(t, err.Error(), "broken.obj:")
			assert.Contains(t, err.Error(), ":"+string(rune('0'+lines))+":")
		})
	}
}

func TestNoGeometry(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{}).LoadReader("empty.obj", strings.NewReader("v 0 0 0\n# nothing else\n"))
	assert.ErrorIs(t, err, ErrNoGeometry)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{"fox.glb": {}}).Load("fox.glb")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestMTLErrors(t *testing.T) {
	_, _, err := parseMTL("bad.mtl", strings.NewReader("newmtl a\nKd 1 x 1\n"))
	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "bad.mtl:2:")

	// statements before the first newmtl are ignored
	ms, _, err := parseMTL("lead.mtl", strings.NewReader("Kd 1 1 1\nnewmtl a\n"))
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, model.DefaultMaterial.Diffuse, ms[0].Diffuse)
}

func TestUnknownStatementsAreRecorded(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\ns 1\nl 1 2\ncstype bezier\nl 2 3\nf 1 2 3"
	doc, err := parseOBJ("extra.obj", strings.NewReader(src))
	require.NoError(t, err)
	// the last line has no newline and still counts
	require.Len(t, doc.groups, 1)
	assert.Len(t, doc.groups[0].indices, 3)
	assert.Equal(t, ignoredSet{"l", "cstype"}, doc.ignored)

	ms, ignored, err := parseMTL("extra.mtl", strings.NewReader("newmtl a\nKe 1 1 1\nillum 2\nKd 0 1 0\nKe 0 0 0\n"))
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, ms[0].Diffuse)
	assert.Equal(t, ignoredSet{"Ke", "illum"}, ignored)
}

func TestLongLinesParse(t *testing.T) {
	var b strings.Builder
	b.WriteString("v 0 0 0\nv 1 0 0\nv 0 1 0\nf")
	for range 200000 {
		b.WriteString(" 1 2 3")
	}
	b.WriteString("\n")

	doc, err := parseOBJ("long.obj", strings.NewReader(b.String()))
	require.NoError(t, err)
	// a 600000 corner fan on one line of more than a megabyte
	assert.Len(t, doc.groups[0].indices, 3*(600000-2))
}
