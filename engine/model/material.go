package model

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
)

var (
	// ErrTexturedMaterialUnsupported is returned for a material that references a texture map.
	// Texture sampling is not implemented.
	ErrTexturedMaterialUnsupported = errors.New("textured materials are not implemented")

	// ErrMaterialIndexOutOfRange is returned when a mesh refers to a material the buffer does not hold.
	ErrMaterialIndexOutOfRange = errors.New("material index out of range")

	// ErrTooManyMaterials is returned by NewPackedMaterials past MaxPackedMaterials.
	ErrTooManyMaterials = errors.New("too many materials")
)

// MaxPackedMaterials is the fixed capacity of a packed material array. Every packed provider has
// the same size, so all instanced models bind their materials at one shared group.
const MaxPackedMaterials = 16

// Material is a flat-shaded Phong material.
type Material struct {
	Name      string
	Ambient   [4]float32
	Diffuse   [4]float32
	Specular  [4]float32
	Shininess float32

	// DiffuseTexture is the map_Kd path, empty for untextured materials.
	DiffuseTexture string
}

// DefaultMaterial is used by geometry that names no material.
var DefaultMaterial = Material{
	Name:      "default",
	Ambient:   [4]float32{0.2, 0.2, 0.2, 1},
	Diffuse:   [4]float32{0.8, 0.8, 0.8, 1},
	Specular:  [4]float32{0, 0, 0, 1},
	Shininess: 1,
}

// Textured reports whether the material references a texture map.
func (m Material) Textured() bool {
	return m.DiffuseTexture != ""
}

// Validate returns ErrTexturedMaterialUnsupported for textured materials.
func (m Material) Validate() error {
	if m.Textured() {
		return fmt.Errorf("material %q (%s): %w", m.Name, m.DiffuseTexture, ErrTexturedMaterialUnsupported)
	}
	return nil
}

// Rows lays the material out as the four vec4 rows the shaders read:
// ambient, diffuse, specular, then shininess in x.
func (m Material) Rows() [4][4]float32 {
	return [4][4]float32{
		m.Ambient,
		m.Diffuse,
		m.Specular,
		{m.Shininess, 0, 0, 0},
	}
}

// MaterialRowsSize is the byte size of one material's rows.
const MaterialRowsSize = uint64(unsafe.Sizeof([4][4]float32{}))

// PackedMaterialsSize is the byte size of every packed material binding.
const PackedMaterialsSize = MaxPackedMaterials * MaterialRowsSize

// MaterialBuffer holds one single-binding storage provider per material, so a mesh selects its
// material by binding the provider's group.
type MaterialBuffer interface {
	// Len returns the number of materials.
	Len() int

	// Provider returns the provider of material i.
	//
	// Parameters:
	//   - i: the material index
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	//   - error: ErrMaterialIndexOutOfRange
	Provider(i int) (bind_group_provider.BindGroupProvider, error)

	// BindGroupLayout returns the layout shared in shape by every material group. Nil when empty.
	BindGroupLayout() *wgpu.BindGroupLayout

	// ByteSize returns the bytes uploaded for all materials.
	ByteSize() uint64

	// Release frees every provider.
	Release(device gpu.Device)
}

type materialBuffer struct {
	providers []bind_group_provider.BindGroupProvider
}

var _ MaterialBuffer = &materialBuffer{}

// NewMaterialBuffer uploads each material into its own storage provider. Any textured material
// fails the whole buffer before anything is allocated. An empty list uploads DefaultMaterial.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label prefix
//   - materials: the materials in index order
//
// Returns:
//   - MaterialBuffer: the buffer
//   - error: ErrTexturedMaterialUnsupported or a device failure
func NewMaterialBuffer(device gpu.Device, label string, materials []Material) (MaterialBuffer, error) {
	if len(materials) == 0 {
		materials = []Material{DefaultMaterial}
	}
	if err := validateAll(label, materials); err != nil {
		return nil, err
	}

	mb := &materialBuffer{}
	for i, m := range materials {
		rows := m.Rows()
		p, err := bind_group_provider.NewStorageBuffer(device, common.SliceToBytes(rows[:]), MaterialRowsSize,
			bind_group_provider.WithLabel(fmt.Sprintf("%s material %d", label, i)))
		if err != nil {
			mb.Release(device)
			return nil, fmt.Errorf("material %q: %w", m.Name, err)
		}
		mb.providers = append(mb.providers, p)
	}
	return mb, nil
}

// NewPackedMaterials uploads every material's rows into one storage binding of
// MaxPackedMaterials entries, indexed in the shader by the instance's material index. Unused
// entries are zero.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label
//   - materials: the materials in index order; empty uploads DefaultMaterial
//
// Returns:
//   - bind_group_provider.BindGroupProvider: a single-binding storage provider
//   - error: ErrTooManyMaterials, ErrTexturedMaterialUnsupported or a device failure
func NewPackedMaterials(device gpu.Device, label string, materials []Material) (bind_group_provider.BindGroupProvider, error) {
	if len(materials) == 0 {
		materials = []Material{DefaultMaterial}
	}
	if len(materials) > MaxPackedMaterials {
		return nil, fmt.Errorf("%s: %w: %d, capacity %d", label, ErrTooManyMaterials, len(materials), MaxPackedMaterials)
	}
	if err := validateAll(label, materials); err != nil {
		return nil, err
	}
	rows := make([][4][4]float32, MaxPackedMaterials)
	for i, m := range materials {
		rows[i] = m.Rows()
	}
	return bind_group_provider.NewStorageBuffer(device, common.SliceToBytes(rows), PackedMaterialsSize,
		bind_group_provider.WithLabel(label+" materials"))
}

func validateAll(label string, materials []Material) error {
	for i, m := range materials {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%s material %d: %w", label, i, err)
		}
	}
	return nil
}

func (mb *materialBuffer) Len() int {
	return len(mb.providers)
}

func (mb *materialBuffer) Provider(i int) (bind_group_provider.BindGroupProvider, error) {
	if i < 0 || i >= len(mb.providers) {
		return nil, fmt.Errorf("%w: %d of %d", ErrMaterialIndexOutOfRange, i, len(mb.providers))
	}
	return mb.providers[i], nil
}

func (mb *materialBuffer) BindGroupLayout() *wgpu.BindGroupLayout {
	if len(mb.providers) == 0 {
		return nil
	}
	return mb.providers[0].BindGroupLayout()
}

func (mb *materialBuffer) ByteSize() uint64 {
	var n uint64
	for _, p := range mb.providers {
		n += p.ByteSize()
	}
	return n
}

func (mb *materialBuffer) Release(device gpu.Device) {
	for _, p := range mb.providers {
		p.Release(device)
	}
	mb.providers = nil
}

// VoxelMaterial is one palette entry read by the voxel and terrain shaders.
// Size: 48 bytes.
type VoxelMaterial struct {
	DiffuseColor  [4]float32 // offset  0
	SpecularColor [3]float32 // offset 16
	Shininess     float32    // offset 28
	Metallic      float32    // offset 32
	Roughness     float32    // offset 36
	_             [2]float32 // offset 40
}

func flatVoxelMaterial(r, g, b, shininess, roughness float32) VoxelMaterial {
	return VoxelMaterial{
		DiffuseColor:  [4]float32{r, g, b, 1},
		SpecularColor: [3]float32{r, g, b},
		Shininess:     shininess,
		Roughness:     roughness,
	}
}

// Palette indices. Material 0 doubles as the empty voxel.
const (
	VoxelBlack uint32 = iota
	VoxelBlue
	VoxelCyan
	VoxelGreen
	VoxelMagenta
	VoxelRed
	VoxelWhite
	VoxelYellow
)

// VoxelPalette is the fixed material table, indexed by the constants above.
var VoxelPalette = [8]VoxelMaterial{
	VoxelBlack:   {DiffuseColor: [4]float32{0, 0, 0, 1}, Shininess: 8, Roughness: 1},
	VoxelBlue:    flatVoxelMaterial(0.1, 0.1, 0.8, 32, 1),
	VoxelCyan:    flatVoxelMaterial(0.1, 0.9, 0.9, 32, 1),
	VoxelGreen:   flatVoxelMaterial(0.1, 0.8, 0.1, 32, 1),
	VoxelMagenta: flatVoxelMaterial(0.9, 0.1, 0.9, 32, 1),
	VoxelRed:     flatVoxelMaterial(0.8, 0.1, 0.1, 32, 1),
	VoxelWhite:   flatVoxelMaterial(1, 1, 1, 64, 0.5),
	VoxelYellow:  flatVoxelMaterial(0.9, 0.9, 0.1, 32, 1),
}

// NewPaletteBuffer uploads VoxelPalette as a single storage binding.
func NewPaletteBuffer(device gpu.Device) (bind_group_provider.BindGroupProvider, error) {
	return bind_group_provider.NewStorageFrom(device, VoxelPalette[:], bind_group_provider.WithLabel("voxel palette"))
}
