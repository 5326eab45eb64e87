package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/lelepado01/RenderingEngine/engine/model"
)

var (
	// ErrNoGeometry is returned for a file without a single face.
	ErrNoGeometry = errors.New("no geometry")

	// ErrSyntax marks a malformed OBJ or MTL line.
	ErrSyntax = errors.New("syntax error")
)

// objIndex is one corner of a face: 0-based position, texcoord and normal indices, -1 if absent.
type objIndex struct {
	v, t, n int
}

// objGroup accumulates the single-index geometry of one o/g/usemtl run.
type objGroup struct {
	name     string
	material string

	positions [][3]float32
	normals   [][3]float32
	texCoords [][2]float32
	indices   []uint32

	hasNormals   bool
	allNormals   bool
	hasTexCoords bool

	remap map[objIndex]uint32
}

func newObjGroup(name, material string) *objGroup {
	return &objGroup{name: name, material: material, allNormals: true, remap: make(map[objIndex]uint32)}
}

// objDocument is the result of parsing one OBJ stream, before materials are resolved.
type objDocument struct {
	groups  []*objGroup
	mtlLibs []string
	ignored ignoredSet
}

// ignoredSet records the statement keywords a parser skipped, in first-seen order.
type ignoredSet []string

func (s *ignoredSet) add(keyword string) {
	if !slices.Contains(*s, keyword) {
		*s = append(*s, keyword)
	}
}

// parseLines feeds the fields of every non-blank line of r, comments stripped, to parseLine.
// Errors carry name and the 1-based line number. Lines have no length limit and the last one
// needs no newline.
func parseLines(name string, r io.Reader, parseLine func(fields []string) error) error {
	br := bufio.NewReader(r)
	for line := 1; ; line++ {
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("%s: %w", name, err)
		}
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			if perr := parseLine(fields); perr != nil {
				return fmt.Errorf("%s:%d: %w", name, line, perr)
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// objParser reads Wavefront OBJ text.
type objParser struct {
	name string

	positions [][3]float32
	normals   [][3]float32
	texCoords [][2]float32

	doc     objDocument
	current *objGroup
}

// parseOBJ reads r into groups of deduplicated vertices. name prefixes error positions.
//
// Parameters:
//   - name: file name used in errors
//   - r: OBJ text
//
// Returns:
//   - *objDocument: the groups with faces, plus referenced mtllib files
//   - error: a read failure or ErrSyntax with file:line
func parseOBJ(name string, r io.Reader) (*objDocument, error) {
	p := &objParser{name: name}
	p.current = newObjGroup("", "")

	if err := parseLines(name, r, p.parseLine); err != nil {
		return nil, err
	}
	p.flush()
	return &p.doc, nil
}

func (p *objParser) parseLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)
	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v)
	case "vt":
		if len(fields) < 2 {
			return fmt.Errorf("%w: vt needs at least one coordinate", ErrSyntax)
		}
		var t [2]float32
		for i := 0; i < 2 && i+1 < len(fields); i++ {
			f, err := parseFloat(fields[i+1])
			if err != nil {
				return err
			}
			t[i] = f
		}
		p.texCoords = append(p.texCoords, t)
	case "f":
		return p.parseFace(fields[1:])
	case "o", "g":
		p.flush()
		p.current = newObjGroup(strings.Join(fields[1:], " "), p.current.material)
	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("%w: usemtl needs a name", ErrSyntax)
		}
		name := strings.Join(fields[1:], " ")
		if len(p.current.indices) > 0 {
			p.flush()
			p.current = newObjGroup(p.current.name, name)
		}
		p.current.material = name
	case "mtllib":
		if len(fields) < 2 {
			return fmt.Errorf("%w: mtllib needs a file", ErrSyntax)
		}
		p.doc.mtlLibs = append(p.doc.mtlLibs, fields[1:]...)
	case "s":
		// smoothing groups: normals come from the file or from ComputeNormals
	default:
		// l, p and vendor extensions carry nothing a triangle mesh uses
		p.doc.ignored.add(fields[0])
	}
	return nil
}

func (p *objParser) parseFace(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("%w: face needs at least 3 corners, got %d", ErrSyntax, len(corners))
	}

	refs := make([]uint32, len(corners))
	for i, c := range corners {
		idx, err := p.parseCorner(c)
		if err != nil {
			return err
		}
		refs[i] = p.current.vertex(idx, p)
	}

	// fan around the first corner
	for i := 1; i+1 < len(refs); i++ {
		p.current.indices = append(p.current.indices, refs[0], refs[i], refs[i+1])
	}
	return nil
}

func (p *objParser) parseCorner(c string) (objIndex, error) {
	parts := strings.Split(c, "/")
	if len(parts) > 3 {
		return objIndex{}, fmt.Errorf("%w: bad face corner %q", ErrSyntax, c)
	}

	idx := objIndex{v: -1, t: -1, n: -1}
	var err error
	if idx.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return objIndex{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.t, err = resolveIndex(parts[1], len(p.texCoords)); err != nil {
			return objIndex{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.n, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return objIndex{}, err
		}
	}
	return idx, nil
}

// resolveIndex turns a 1-based or negative (relative to the end) OBJ index into a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrSyntax, s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("%w: index %d out of range (%d defined)", ErrSyntax, i, count)
	}
}

// vertex returns the group-local index of idx, appending a new vertex the first time it is seen.
func (g *objGroup) vertex(idx objIndex, p *objParser) uint32 {
	if i, ok := g.remap[idx]; ok {
		return i
	}
	i := uint32(len(g.positions))
	g.remap[idx] = i

	g.positions = append(g.positions, p.positions[idx.v])

	var n [3]float32
	if idx.n >= 0 {
		n = p.normals[idx.n]
		g.hasNormals = true
	} else {
		g.allNormals = false
	}
	g.normals = append(g.normals, n)

	var t [2]float32
	if idx.t >= 0 {
		t = p.texCoords[idx.t]
		g.hasTexCoords = true
	}
	g.texCoords = append(g.texCoords, t)
	return i
}

// flush keeps the current group if it has faces.
func (p *objParser) flush() {
	if len(p.current.indices) > 0 {
		p.doc.groups = append(p.doc.groups, p.current)
	}
}

// geometry converts the group. Normals are dropped unless every corner carried one, so
// ComputeNormals fills them in at upload.
func (g *objGroup) geometry(materialIndex int) model.Geometry {
	geo := model.Geometry{
		Name:          g.name,
		Positions:     g.positions,
		Indices:       g.indices,
		MaterialIndex: materialIndex,
	}
	if g.hasNormals && g.allNormals {
		geo.Normals = g.normals
	}
	if g.hasTexCoords {
		geo.TexCoords = g.texCoords
	}
	return geo
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, s)
	}
	return float32(f), nil
}

func parseVec3(fields []string) ([3]float32, error) {
	var v [3]float32
	if len(fields) < 3 {
		return v, fmt.Errorf("%w: expected 3 components, got %d", ErrSyntax, len(fields))
	}
	for i := range v {
		f, err := parseFloat(fields[i])
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}
