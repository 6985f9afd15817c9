package asset

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/wtvr-engine/wtvr3d/engine/buffer"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/material"
	"github.com/wtvr-engine/wtvr3d/engine/mesh"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// ErrDuplicateID is returned when an asset registers under an id that is
// already taken. Registration is append-only; assets are never replaced.
var ErrDuplicateID = errors.New("asset id already registered")

// ErrMissingParent is returned when a material instance references a parent
// material that has not been registered yet.
var ErrMissingParent = errors.New("parent material not registered")

// store is one append-only asset collection: a slice for index access plus
// an id index. Indices are stable for the registry's lifetime.
type store[T any] struct {
	items   []T
	indices map[string]int
}

func newStore[T any]() store[T] {
	return store[T]{indices: make(map[string]int)}
}

func (s *store[T]) add(id string, item T) (int, error) {
	if _, taken := s.indices[id]; taken {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	index := len(s.items)
	s.items = append(s.items, item)
	s.indices[id] = index
	return index, nil
}

func (s *store[T]) byID(id string) (T, bool) {
	index, ok := s.indices[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[index], true
}

func (s *store[T]) at(index int) (T, bool) {
	if index < 0 || index >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[index], true
}

// registryImpl is the implementation of the Registry interface.
type registryImpl struct {
	materials store[material.Material]
	instances store[material.MaterialInstance]
	meshes    store[*mesh.MeshData]
	textures  store[gpu.Texture]
}

// Registry owns every loaded asset. Assets register under a string id and
// receive a stable integer index; lookups by index are the hot path during
// rendering, ids serve loading and tooling. Ids are append-only: registering
// a taken id fails with ErrDuplicateID, and indices never shift.
type Registry interface {
	// RegisterMaterial adds a constructed material under its name.
	//
	// Returns:
	//   - int: the material's registry index
	//   - error: ErrDuplicateID if the name is taken
	RegisterMaterial(m material.Material) (int, error)

	// RegisterMaterialInstance adds a constructed material instance under
	// its id.
	//
	// Returns:
	//   - int: the instance's registry index
	//   - error: ErrDuplicateID if the id is taken
	RegisterMaterialInstance(mi material.MaterialInstance) (int, error)

	// RegisterMeshData adds constructed mesh data under its id.
	//
	// Returns:
	//   - int: the mesh data's registry index
	//   - error: ErrDuplicateID if the id is taken
	RegisterMeshData(md *mesh.MeshData) (int, error)

	// RegisterTexture adds an uploaded texture under an id so serialized
	// uniforms can reference it.
	//
	// Returns:
	//   - int: the texture's registry index
	//   - error: ErrDuplicateID if the id is taken
	RegisterTexture(id string, texture gpu.Texture) (int, error)

	// RegisterTextureImage uploads a decoded image as an RGBA texture and
	// registers it under the id.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - id: the registry id
	//   - img: the decoded image, converted to RGBA if it is not already
	//
	// Returns:
	//   - int: the texture's registry index
	//   - error: upload failure or ErrDuplicateID if the id is taken
	RegisterTextureImage(ctx gpu.Context, id string, img image.Image) (int, error)

	// RegisterMaterialFile constructs a material from its serialized form,
	// compiling and linking its shaders, and registers it.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - file: the decoded material file
	//
	// Returns:
	//   - material.Material: the registered material
	//   - error: construction or registration failure
	RegisterMaterialFile(ctx gpu.Context, file *MaterialFile) (material.Material, error)

	// RegisterMaterialInstanceFile constructs a material instance from its
	// serialized form and registers it. The parent material must already be
	// registered.
	//
	// Parameters:
	//   - file: the decoded instance file
	//
	// Returns:
	//   - material.MaterialInstance: the registered instance
	//   - error: ErrMissingParent, value decoding, or registration failure
	RegisterMaterialInstanceFile(file *MaterialInstanceFile) (material.MaterialInstance, error)

	// RegisterMeshFile constructs mesh data from its serialized form,
	// uploading the attribute streams to the GPU, and registers it. By
	// default indexed meshes are de-indexed into a flat triangle soup;
	// WithIndexBuffer keeps the triangle list as a GPU index buffer
	// instead.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - file: the decoded mesh file
	//   - options: per-mesh registration options
	//
	// Returns:
	//   - *mesh.MeshData: the registered mesh data
	//   - error: upload or registration failure
	RegisterMeshFile(ctx gpu.Context, file *MeshFile, options ...MeshRegisterOption) (*mesh.MeshData, error)

	// RegisterBundle decodes and registers a batch of serialized assets.
	// Decoding runs on a worker pool; GPU uploads and registration stay on
	// the calling goroutine, materials first, then instances, then meshes.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - bundle: the encoded asset payloads
	//
	// Returns:
	//   - error: the first decode or registration failure
	RegisterBundle(ctx gpu.Context, bundle Bundle) error

	// Material returns a material by id, or nil.
	Material(id string) material.Material

	// MaterialAt returns a material by registry index, or nil.
	MaterialAt(index int) material.Material

	// MaterialIndex resolves a material id to its registry index.
	MaterialIndex(id string) (int, bool)

	// MaterialInstance returns a material instance by id, or nil.
	MaterialInstance(id string) material.MaterialInstance

	// MaterialInstanceAt returns a material instance by registry index, or nil.
	MaterialInstanceAt(index int) material.MaterialInstance

	// MaterialInstanceIndex resolves an instance id to its registry index.
	MaterialInstanceIndex(id string) (int, bool)

	// MeshData returns mesh data by id, or nil.
	MeshData(id string) *mesh.MeshData

	// MeshDataAt returns mesh data by registry index, or nil.
	MeshDataAt(index int) *mesh.MeshData

	// MeshDataIndex resolves a mesh data id to its registry index.
	MeshDataIndex(id string) (int, bool)

	// Texture returns a texture by id.
	Texture(id string) (gpu.Texture, bool)

	// MaterialCount returns the number of registered materials.
	MaterialCount() int

	// MeshDataCount returns the number of registered mesh datas.
	MeshDataCount() int
}

var _ Registry = &registryImpl{}

// NewRegistry creates an empty asset registry.
//
// Returns:
//   - Registry: the registry
func NewRegistry() Registry {
	return &registryImpl{
		materials: newStore[material.Material](),
		instances: newStore[material.MaterialInstance](),
		meshes:    newStore[*mesh.MeshData](),
		textures:  newStore[gpu.Texture](),
	}
}

func (r *registryImpl) RegisterMaterial(m material.Material) (int, error) {
	return r.materials.add(m.Name(), m)
}

func (r *registryImpl) RegisterMaterialInstance(mi material.MaterialInstance) (int, error) {
	return r.instances.add(mi.ID(), mi)
}

func (r *registryImpl) RegisterMeshData(md *mesh.MeshData) (int, error) {
	return r.meshes.add(md.ID(), md)
}

func (r *registryImpl) RegisterTexture(id string, texture gpu.Texture) (int, error) {
	return r.textures.add(id, texture)
}

func (r *registryImpl) RegisterTextureImage(ctx gpu.Context, id string, img image.Image) (int, error) {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	texture, err := ctx.CreateTexture(bounds.Dx(), bounds.Dy(), rgba.Pix)
	if err != nil {
		return 0, fmt.Errorf("texture %q: %w", id, err)
	}
	index, err := r.RegisterTexture(id, texture)
	if err != nil {
		ctx.DeleteTexture(texture)
		return 0, err
	}
	return index, nil
}

func (r *registryImpl) RegisterMaterialFile(ctx gpu.Context, file *MaterialFile) (material.Material, error) {
	uniforms, err := r.uniformValues(file.Uniforms)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", file.ID, err)
	}
	options := []material.MaterialBuilderOption{material.WithUniforms(uniforms)}
	if file.Transparent {
		options = append(options, material.WithTransparency())
	}
	if file.Lit {
		options = append(options, material.WithLighting())
	}
	m, err := material.New(ctx, file.ID, file.VertexShader, file.FragmentShader, options...)
	if err != nil {
		return nil, err
	}
	if _, err := r.RegisterMaterial(m); err != nil {
		m.Destroy(ctx)
		return nil, err
	}
	return m, nil
}

func (r *registryImpl) RegisterMaterialInstanceFile(file *MaterialInstanceFile) (material.MaterialInstance, error) {
	parent, ok := r.materials.byID(file.ParentID)
	if !ok {
		return nil, fmt.Errorf("%w: instance %q references %q", ErrMissingParent, file.ID, file.ParentID)
	}
	uniforms, err := r.uniformValues(file.Uniforms)
	if err != nil {
		return nil, fmt.Errorf("material instance %q: %w", file.ID, err)
	}
	mi := material.NewInstance(file.ID, parent, material.WithInstanceUniforms(uniforms))
	if _, err := r.RegisterMaterialInstance(mi); err != nil {
		return nil, err
	}
	return mi, nil
}

func (r *registryImpl) RegisterMeshFile(ctx gpu.Context, file *MeshFile, options ...MeshRegisterOption) (*mesh.MeshData, error) {
	var settings meshRegisterSettings
	for _, option := range options {
		option(&settings)
	}

	source := file
	if !settings.keepIndices {
		deindexed, err := file.Deindex()
		if err != nil {
			return nil, err
		}
		source = deindexed
	}

	vertexCount := source.VertexCount()
	if settings.keepIndices && len(source.Buffers) > 0 {
		b := source.Buffers[0]
		vertexCount = int32(len(b.Data)) / b.DataType.Size()
	}
	md := mesh.New(source.ID, vertexCount)
	for _, fb := range source.Buffers {
		b, err := buffer.FromFloat32Data(ctx, fb.Name, fb.DataType, fb.Data)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", source.ID, err)
		}
		md.PushBuffer(b)
	}
	if settings.keepIndices && len(source.Triangles) > 0 {
		indices := make([]uint32, 0, len(source.Triangles)*3)
		for _, tri := range source.Triangles {
			indices = append(indices, tri[0], tri[1], tri[2])
		}
		ib, err := buffer.FromIndexData(ctx, indices)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", source.ID, err)
		}
		md.SetIndexBuffer(ib)
	}
	if _, err := r.RegisterMeshData(md); err != nil {
		return nil, err
	}
	return md, nil
}

// uniformValues decodes serialized uniform values, resolving texture
// references against the registry.
func (r *registryImpl) uniformValues(values []UniformFileValue) (map[string]uniform.Value, error) {
	decoded := make(map[string]uniform.Value, len(values))
	for _, v := range values {
		if v.Kind == uniform.KindTexture {
			texture, ok := r.textures.byID(v.TextureID)
			if !ok {
				return nil, fmt.Errorf("uniform %q references unregistered texture %q", v.Name, v.TextureID)
			}
			decoded[v.Name] = uniform.TextureRef(texture)
			continue
		}
		value, err := uniform.FromFloats(v.Kind, v.Floats)
		if err != nil {
			return nil, fmt.Errorf("uniform %q: %w", v.Name, err)
		}
		decoded[v.Name] = value
	}
	return decoded, nil
}

func (r *registryImpl) Material(id string) material.Material {
	m, _ := r.materials.byID(id)
	return m
}

func (r *registryImpl) MaterialAt(index int) material.Material {
	m, _ := r.materials.at(index)
	return m
}

func (r *registryImpl) MaterialIndex(id string) (int, bool) {
	index, ok := r.materials.indices[id]
	return index, ok
}

func (r *registryImpl) MaterialInstance(id string) material.MaterialInstance {
	mi, _ := r.instances.byID(id)
	return mi
}

func (r *registryImpl) MaterialInstanceAt(index int) material.MaterialInstance {
	mi, _ := r.instances.at(index)
	return mi
}

func (r *registryImpl) MaterialInstanceIndex(id string) (int, bool) {
	index, ok := r.instances.indices[id]
	return index, ok
}

func (r *registryImpl) MeshData(id string) *mesh.MeshData {
	md, _ := r.meshes.byID(id)
	return md
}

func (r *registryImpl) MeshDataAt(index int) *mesh.MeshData {
	md, _ := r.meshes.at(index)
	return md
}

func (r *registryImpl) MeshDataIndex(id string) (int, bool) {
	index, ok := r.meshes.indices[id]
	return index, ok
}

func (r *registryImpl) Texture(id string) (gpu.Texture, bool) {
	return r.textures.byID(id)
}

func (r *registryImpl) MaterialCount() int {
	return len(r.materials.items)
}

func (r *registryImpl) MeshDataCount() int {
	return len(r.meshes.items)
}

// meshRegisterSettings collects per-mesh registration options.
type meshRegisterSettings struct {
	keepIndices bool
}

// MeshRegisterOption is a per-call option for RegisterMeshFile.
type MeshRegisterOption func(*meshRegisterSettings)

// WithIndexBuffer keeps the mesh's triangle list as a GPU index buffer
// instead of de-indexing the attribute streams. Cheaper on memory for
// meshes with heavy vertex reuse.
//
// Returns:
//   - MeshRegisterOption: the option to apply
func WithIndexBuffer() MeshRegisterOption {
	return func(s *meshRegisterSettings) {
		s.keepIndices = true
	}
}
