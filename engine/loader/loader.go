// Package loader parses Wavefront OBJ models and their MTL material libraries into
// model.Asset values ready for upload.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path"
	"strings"
	"sync"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/model"
)

// ErrUnsupportedFormat is returned for a file extension the loader has no parser for.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	fsys  fs.FS
	cache map[string]model.Asset
}

// Loader parses model files and caches the results by path.
type Loader interface {
	// Load parses the OBJ file at path and every mtllib it references. A cached asset is returned
	// as is. Missing material libraries are logged and skipped; geometry naming an unknown
	// material falls back to model.DefaultMaterial.
	//
	// Parameters:
	//   - name: slash-separated path inside the loader's file system
	//
	// Returns:
	//   - model.Asset: meshes and materials
	//   - error: ErrUnsupportedFormat, ErrNoGeometry, or ErrSyntax with file:line
	Load(name string) (model.Asset, error)

	// LoadReader parses OBJ text from r and caches it under name. mtllib references resolve
	// relative to name's directory.
	//
	// Parameters:
	//   - name: cache key and error prefix
	//   - r: OBJ text
	//
	// Returns:
	//   - model.Asset: meshes and materials
	//   - error: ErrNoGeometry or ErrSyntax with file:line
	LoadReader(name string, r io.Reader) (model.Asset, error)

	// Get returns a cached asset.
	Get(name string) (model.Asset, bool)

	// Assets returns a copy of the cache.
	Assets() map[string]model.Asset
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from fsys.
//
// Parameters:
//   - fsys: the file system model paths resolve in, e.g. os.DirFS(assetDir)
//   - options: functional options
//
// Returns:
//   - Loader: the loader
func NewLoader(fsys fs.FS, options ...LoaderBuilderOption) Loader {
	l := &loader{
		fsys:  fsys,
		cache: make(map[string]model.Asset),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(name string) (model.Asset, error) {
	if a, ok := l.Get(name); ok {
		return a, nil
	}
	if ext := strings.ToLower(path.Ext(name)); ext != ".obj" {
		return model.Asset{}, fmt.Errorf("%s: %w: %q", name, ErrUnsupportedFormat, ext)
	}

	f, err := l.fsys.Open(name)
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	return l.LoadReader(name, f)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Asset, error) {
	if a, ok := l.Get(name); ok {
		return a, nil
	}

	doc, err := parseOBJ(name, r)
	if err != nil {
		return model.Asset{}, err
	}
	if len(doc.groups) == 0 {
		return model.Asset{}, fmt.Errorf("%s: %w", name, ErrNoGeometry)
	}
	if len(doc.ignored) > 0 {
		common.Logger().Debug("model statements ignored", "model", name, "statements", doc.ignored)
	}

	materials, err := l.loadLibraries(path.Dir(name), doc.mtlLibs)
	if err != nil {
		return model.Asset{}, err
	}
	asset := assemble(strings.TrimSuffix(path.Base(name), path.Ext(name)), doc, materials)

	common.Logger().Debug("model parsed", "model", name, "meshes", len(asset.Meshes), "materials", len(asset.Materials))

	l.mu.Lock()
	l.cache[name] = asset
	l.mu.Unlock()
	return asset, nil
}

func (l *loader) Get(name string) (model.Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.cache[name]
	return a, ok
}

func (l *loader) Assets() map[string]model.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.cache)
}

func (l *loader) loadLibraries(dir string, libs []string) ([]model.Material, error) {
	var materials []model.Material
	for _, lib := range libs {
		name := path.Join(dir, lib)
		f, err := l.fsys.Open(name)
		if err != nil {
			common.Logger().Warn("material library skipped", "library", name, "error", err)
			continue
		}
		parsed, ignored, err := parseMTL(name, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		if len(ignored) > 0 {
			common.Logger().Debug("material statements ignored", "library", name, "statements", ignored)
		}
		materials = append(materials, parsed...)
	}
	return materials, nil
}

// assemble resolves usemtl names to indices into the returned material list. A default material
// is appended once if any geometry names none or an unknown one.
func assemble(name string, doc *objDocument, materials []model.Material) model.Asset {
	index := make(map[string]int, len(materials))
	for i, m := range materials {
		if _, dup := index[m.Name]; !dup {
			index[m.Name] = i
		}
	}

	asset := model.Asset{Name: name, Materials: materials}
	fallback := -1
	for _, g := range doc.groups {
		mi, ok := index[g.material]
		if !ok {
			if g.material != "" {
				common.Logger().Warn("unknown material, using default", "model", name, "material", g.material)
			}
			if fallback < 0 {
				fallback = len(asset.Materials)
				asset.Materials = append(asset.Materials, model.DefaultMaterial)
			}
			mi = fallback
		}
		asset.Meshes = append(asset.Meshes, g.geometry(mi))
	}
	return asset
}
