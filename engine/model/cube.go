package model

// cubeFaces lists each face of the unit cube as its normal and four corners, counter-clockwise
// seen from outside.
var cubeFaces = [6]struct {
	normal  [3]float32
	corners [4][3]float32
}{
	{[3]float32{0, 1, 0}, [4][3]float32{{-.5, .5, .5}, {.5, .5, .5}, {.5, .5, -.5}, {-.5, .5, -.5}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{-.5, -.5, -.5}, {.5, -.5, -.5}, {.5, -.5, .5}, {-.5, -.5, .5}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{-.5, -.5, -.5}, {-.5, -.5, .5}, {-.5, .5, .5}, {-.5, .5, -.5}}},
	{[3]float32{1, 0, 0}, [4][3]float32{{.5, -.5, .5}, {.5, -.5, -.5}, {.5, .5, -.5}, {.5, .5, .5}}},
	{[3]float32{0, 0, -1}, [4][3]float32{{.5, -.5, -.5}, {-.5, -.5, -.5}, {-.5, .5, -.5}, {.5, .5, -.5}}},
	{[3]float32{0, 0, 1}, [4][3]float32{{-.5, -.5, .5}, {.5, -.5, .5}, {.5, .5, .5}, {-.5, .5, .5}}},
}

// UnitCube returns a cube of side 1 centred on the origin, with flat per-face normals and one
// default material. Instanced terrain scales and places it per tile.
func UnitCube(name string) Asset {
	g := Geometry{Name: name}
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for _, f := range cubeFaces {
		base := uint32(len(g.Positions))
		for i, c := range f.corners {
			g.Positions = append(g.Positions, c)
			g.Normals = append(g.Normals, f.normal)
			g.TexCoords = append(g.TexCoords, uv[i])
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return Asset{Name: name, Meshes: []Geometry{g}, Materials: []Material{DefaultMaterial}}
}
