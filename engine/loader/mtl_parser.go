package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/lelepado01/RenderingEngine/engine/model"
)

// parseMTL reads a Wavefront material library. Colours keep alpha 1 unless a d (dissolve) line
// sets it.
//
// Parameters:
//   - name: file name used in errors
//   - r: MTL text
//
// Returns:
//   - []model.Material: the materials in file order
//   - ignoredSet: statements with no Material field, such as Ke or illum
//   - error: a read failure or ErrSyntax with file:line
func parseMTL(name string, r io.Reader) ([]model.Material, ignoredSet, error) {
	var (
		materials []model.Material
		ignored   ignoredSet
	)

	err := parseLines(name, r, func(fields []string) error {
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return fmt.Errorf("%w: newmtl needs a name", ErrSyntax)
			}
			materials = append(materials, model.Material{
				Name:      strings.Join(fields[1:], " "),
				Ambient:   [4]float32{0, 0, 0, 1},
				Diffuse:   model.DefaultMaterial.Diffuse,
				Specular:  [4]float32{0, 0, 0, 1},
				Shininess: 1,
			})
			return nil
		}
		if len(materials) == 0 {
			// statements before the first newmtl have nothing to apply to
			return nil
		}
		applied, err := applyMTLStatement(&materials[len(materials)-1], fields)
		if !applied {
			ignored.add(fields[0])
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return materials, ignored, nil
}

// applyMTLStatement sets the field fields[0] names. It reports false for a statement the material
// has no field for.
func applyMTLStatement(m *model.Material, fields []string) (bool, error) {
	switch fields[0] {
	case "Ka", "Kd", "Ks":
		c, err := parseVec3(fields[1:])
		if err != nil {
			return true, err
		}
		target := map[string]*[4]float32{"Ka": &m.Ambient, "Kd": &m.Diffuse, "Ks": &m.Specular}[fields[0]]
		*target = [4]float32{c[0], c[1], c[2], target[3]}
	case "Ns":
		if len(fields) < 2 {
			return true, fmt.Errorf("%w: Ns needs a value", ErrSyntax)
		}
		f, err := parseFloat(fields[1])
		if err != nil {
			return true, err
		}
		m.Shininess = f
	case "d":
		if len(fields) < 2 {
			return true, fmt.Errorf("%w: d needs a value", ErrSyntax)
		}
		f, err := parseFloat(fields[len(fields)-1])
		if err != nil {
			return true, err
		}
		m.Ambient[3], m.Diffuse[3], m.Specular[3] = f, f, f
	case "map_Kd":
		if len(fields) < 2 {
			return true, fmt.Errorf("%w: map_Kd needs a file", ErrSyntax)
		}
		// options such as -s or -o precede the file name
		m.DiffuseTexture = fields[len(fields)-1]
	default:
		return false, nil
	}
	return true, nil
}
