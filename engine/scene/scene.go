// Package scene implements the transform graph and the components attached
// to its entities. Transforms live in a flat arena indexed by generation
// tagged ids; world matrices are recomputed lazily by a single pass per
// frame, parents before children.
package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/engine/camera"
	"github.com/wtvr-engine/wtvr3d/engine/light"
)

// ErrStaleTransform is returned when a TransformID refers to a slot that was
// destroyed and possibly reused since the id was issued.
var ErrStaleTransform = errors.New("transform id is stale")

// ErrDirtyTransform is returned when a world matrix is read before the
// frame's update pass has recomputed it.
var ErrDirtyTransform = errors.New("transform world matrix is dirty")

// none marks an absent arena link.
const none = -1

// TransformID identifies a transform slot in the scene arena. The
// generation tag detects ids that outlive their entity: a destroyed slot's
// generation advances, so ids issued before the destroy stop resolving
// instead of aliasing the slot's next occupant.
type TransformID struct {
	// Index is the arena slot index.
	Index int

	// Generation is the slot generation the id was issued under.
	Generation uint32
}

// MeshRef ties a transform to renderable geometry by asset registry index:
// the shared material, the per-object material instance, and the mesh data.
type MeshRef struct {
	// MaterialID is the registry index of the shared material.
	MaterialID int

	// MaterialInstanceID is the registry index of the material instance.
	MaterialInstanceID int

	// MeshDataID is the registry index of the mesh data.
	MeshDataID int
}

// MeshEntity is one renderable entity produced by the mesh query: the
// transform it follows plus its geometry and material references.
type MeshEntity struct {
	// Transform is the entity's transform id.
	Transform TransformID

	// Ref is the entity's mesh reference.
	Ref MeshRef
}

// node is one arena slot: TRS state, cached matrices, tree links, and the
// components attached to the entity.
type node struct {
	live       bool
	generation uint32

	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3

	world mgl32.Mat4
	dirty bool

	parent          int
	firstChild      int
	lastChild       int
	nextSibling     int
	previousSibling int

	enabled        bool
	meshRef        *MeshRef
	lightSource    *light.Source
	lightAmbient   bool
	lightDirection *mgl32.Vec3
	lightCone      *light.Cone
	camera         camera.Camera
}

// sceneImpl is the implementation of the Scene interface.
type sceneImpl struct {
	nodes      []node
	free       []int
	mainCamera TransformID
	hasCamera  bool
}

// Scene is the entity arena: a forest of transforms with components hanging
// off them. All methods are single-threaded; the engine mutates the scene
// between frames and runs UpdateWorldMatrices once before each render.
type Scene interface {
	// AppendNew creates a new transform as a root of the graph, reusing a
	// destroyed slot when one is free. The new transform has identity TRS
	// and starts dirty and enabled.
	//
	// Returns:
	//   - TransformID: the new transform's id
	AppendNew() TransformID

	// AppendChild creates a new transform parented under an existing one.
	//
	// Parameters:
	//   - parent: the parent transform
	//
	// Returns:
	//   - TransformID: the new transform's id
	//   - error: ErrStaleTransform if the parent no longer resolves
	AppendChild(parent TransformID) (TransformID, error)

	// Alive reports whether an id still resolves to a live transform.
	Alive(id TransformID) bool

	// Parent returns the parent of a transform.
	//
	// Returns:
	//   - TransformID: the parent's id
	//   - bool: false for roots and unresolvable ids
	Parent(id TransformID) (TransformID, bool)

	// Children returns the ids of a transform's direct children in
	// insertion order.
	Children(id TransformID) []TransformID

	// SetTranslation sets the local translation and marks the transform
	// dirty.
	//
	// Parameters:
	//   - id: the transform
	//   - translation: the new local translation
	//
	// Returns:
	//   - error: ErrStaleTransform if the id no longer resolves
	SetTranslation(id TransformID, translation mgl32.Vec3) error

	// SetRotation sets the local rotation and marks the transform dirty.
	//
	// Parameters:
	//   - id: the transform
	//   - rotation: the new local rotation
	//
	// Returns:
	//   - error: ErrStaleTransform if the id no longer resolves
	SetRotation(id TransformID, rotation mgl32.Quat) error

	// SetScale sets the local scale and marks the transform dirty.
	//
	// Parameters:
	//   - id: the transform
	//   - scale: the new local scale
	//
	// Returns:
	//   - error: ErrStaleTransform if the id no longer resolves
	SetScale(id TransformID, scale mgl32.Vec3) error

	// Translation returns the local translation.
	Translation(id TransformID) (mgl32.Vec3, error)

	// Rotation returns the local rotation.
	Rotation(id TransformID) (mgl32.Quat, error)

	// Scale returns the local scale.
	Scale(id TransformID) (mgl32.Vec3, error)

	// UpdateWorldMatrices recomputes the world matrices of every dirty
	// transform and its descendants, parents before children. A subtree
	// whose root and descendants are all clean is skipped entirely.
	UpdateWorldMatrices()

	// WorldMatrix returns the transform's world matrix as of the last
	// update pass.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	//   - error: ErrStaleTransform if the id no longer resolves,
	//     ErrDirtyTransform if the transform changed after the last pass
	WorldMatrix(id TransformID) (mgl32.Mat4, error)

	// Destroy removes a transform and its whole subtree. Slots are pushed
	// to the free list with their generation advanced, so outstanding ids
	// into the subtree go stale rather than dangling.
	//
	// Parameters:
	//   - id: the subtree root to destroy
	//
	// Returns:
	//   - error: ErrStaleTransform if the id no longer resolves
	Destroy(id TransformID) error

	// Len returns the number of live transforms.
	Len() int

	// SetEnabled toggles an entity. Disabled entities are invisible to the
	// mesh and light queries but keep their place in the transform graph.
	SetEnabled(id TransformID, enabled bool) error

	// Enabled reports whether an entity is enabled.
	Enabled(id TransformID) (bool, error)

	// SetMeshRef attaches renderable geometry to an entity.
	SetMeshRef(id TransformID, ref MeshRef) error

	// MeshRef returns the entity's mesh reference, or nil.
	MeshRef(id TransformID) (*MeshRef, error)

	// SetLightSource attaches a positional light source to an entity. The
	// light's class follows from the other data present: a direction makes
	// it directional, a direction plus cone makes it a spot, and a bare
	// source lights from the entity's position as a point light.
	SetLightSource(id TransformID, source light.Source) error

	// SetAmbientLight attaches an ambient light source to an entity. The
	// entity's transform and any attached direction or cone are ignored;
	// ambient sources merge additively in the frame's light repository.
	SetAmbientLight(id TransformID, source light.Source) error

	// SetLightDirection attaches a local-space light direction.
	SetLightDirection(id TransformID, direction mgl32.Vec3) error

	// SetLightCone attaches a spot cone.
	SetLightCone(id TransformID, cone light.Cone) error

	// RemoveLight detaches the light source, direction, and cone.
	RemoveLight(id TransformID) error

	// SetCamera attaches a camera to an entity. The first camera attached
	// becomes the main camera.
	SetCamera(id TransformID, cam camera.Camera) error

	// SetMainCamera selects which camera entity drives rendering.
	//
	// Returns:
	//   - error: ErrStaleTransform if the id no longer resolves or the
	//     entity has no camera
	SetMainCamera(id TransformID) error

	// MainCamera returns the main camera and its entity.
	//
	// Returns:
	//   - camera.Camera: the camera
	//   - TransformID: the camera entity
	//   - bool: false when no camera is attached to the scene
	MainCamera() (camera.Camera, TransformID, bool)

	// MeshEntities collects the enabled entities that carry a mesh
	// reference, in arena order.
	MeshEntities() []MeshEntity

	// LightEntries collects the enabled lights in world space for the
	// frame's repository rebuild. Directions are rotated into world space
	// and positions taken from world matrices, so the update pass must run
	// first.
	LightEntries() []light.Entry
}

var _ Scene = &sceneImpl{}

// NewScene creates an empty scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &sceneImpl{}
	for _, option := range options {
		option(s)
	}
	return s
}

// resolve maps an id to its arena slot, rejecting stale generations.
func (s *sceneImpl) resolve(id TransformID) (*node, error) {
	if id.Index < 0 || id.Index >= len(s.nodes) {
		return nil, ErrStaleTransform
	}
	n := &s.nodes[id.Index]
	if !n.live || n.generation != id.Generation {
		return nil, ErrStaleTransform
	}
	return n, nil
}

// allocate takes a slot from the free list or grows the arena, and resets
// it to a fresh root transform.
func (s *sceneImpl) allocate() TransformID {
	var index int
	if count := len(s.free); count > 0 {
		index = s.free[count-1]
		s.free = s.free[:count-1]
	} else {
		s.nodes = append(s.nodes, node{})
		index = len(s.nodes) - 1
	}
	n := &s.nodes[index]
	generation := n.generation
	*n = node{
		live:            true,
		generation:      generation,
		rotation:        mgl32.QuatIdent(),
		scale:           mgl32.Vec3{1, 1, 1},
		dirty:           true,
		parent:          none,
		firstChild:      none,
		lastChild:       none,
		nextSibling:     none,
		previousSibling: none,
		enabled:         true,
	}
	return TransformID{Index: index, Generation: generation}
}

func (s *sceneImpl) AppendNew() TransformID {
	return s.allocate()
}

func (s *sceneImpl) AppendChild(parent TransformID) (TransformID, error) {
	if _, err := s.resolve(parent); err != nil {
		return TransformID{}, err
	}
	id := s.allocate()
	s.link(parent.Index, id.Index)
	return id, nil
}

// link appends child as the last child of parent.
func (s *sceneImpl) link(parent, child int) {
	p := &s.nodes[parent]
	c := &s.nodes[child]
	c.parent = parent
	if p.lastChild == none {
		p.firstChild = child
		p.lastChild = child
		return
	}
	s.nodes[p.lastChild].nextSibling = child
	c.previousSibling = p.lastChild
	p.lastChild = child
}

func (s *sceneImpl) Alive(id TransformID) bool {
	_, err := s.resolve(id)
	return err == nil
}

func (s *sceneImpl) Parent(id TransformID) (TransformID, bool) {
	n, err := s.resolve(id)
	if err != nil || n.parent == none {
		return TransformID{}, false
	}
	return TransformID{Index: n.parent, Generation: s.nodes[n.parent].generation}, true
}

func (s *sceneImpl) Children(id TransformID) []TransformID {
	n, err := s.resolve(id)
	if err != nil {
		return nil
	}
	var children []TransformID
	for child := n.firstChild; child != none; child = s.nodes[child].nextSibling {
		children = append(children, TransformID{Index: child, Generation: s.nodes[child].generation})
	}
	return children
}

func (s *sceneImpl) SetTranslation(id TransformID, translation mgl32.Vec3) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.translation = translation
	n.dirty = true
	return nil
}

func (s *sceneImpl) SetRotation(id TransformID, rotation mgl32.Quat) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.rotation = rotation
	n.dirty = true
	return nil
}

func (s *sceneImpl) SetScale(id TransformID, scale mgl32.Vec3) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.scale = scale
	n.dirty = true
	return nil
}

func (s *sceneImpl) Translation(id TransformID) (mgl32.Vec3, error) {
	n, err := s.resolve(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return n.translation, nil
}

func (s *sceneImpl) Rotation(id TransformID) (mgl32.Quat, error) {
	n, err := s.resolve(id)
	if err != nil {
		return mgl32.Quat{}, err
	}
	return n.rotation, nil
}

func (s *sceneImpl) Scale(id TransformID) (mgl32.Vec3, error) {
	n, err := s.resolve(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return n.scale, nil
}

// localMatrix composes the node's TRS into its local matrix.
func (n *node) localMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(n.translation[0], n.translation[1], n.translation[2])
	rotate := n.rotation.Mat4()
	scale := mgl32.Scale3D(n.scale[0], n.scale[1], n.scale[2])
	return translate.Mul4(rotate).Mul4(scale)
}

func (s *sceneImpl) UpdateWorldMatrices() {
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.live && n.parent == none {
			s.refreshSubtree(i, mgl32.Ident4(), false)
		}
	}
}

// refreshSubtree walks one subtree parent-first. A node recomputes when it
// is dirty itself or any ancestor recomputed this pass; clean nodes still
// descend because dirtiness is per-node, not per-subtree.
func (s *sceneImpl) refreshSubtree(index int, parentWorld mgl32.Mat4, parentRefreshed bool) {
	n := &s.nodes[index]
	refreshed := parentRefreshed || n.dirty
	if refreshed {
		n.world = parentWorld.Mul4(n.localMatrix())
		n.dirty = false
	}
	for child := n.firstChild; child != none; child = s.nodes[child].nextSibling {
		s.refreshSubtree(child, n.world, refreshed)
	}
}

func (s *sceneImpl) WorldMatrix(id TransformID) (mgl32.Mat4, error) {
	n, err := s.resolve(id)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	if n.dirty {
		return mgl32.Mat4{}, ErrDirtyTransform
	}
	return n.world, nil
}

func (s *sceneImpl) Destroy(id TransformID) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	s.unlink(id.Index, n)
	s.freeSubtree(id.Index)
	return nil
}

// unlink detaches a node from its parent's child list, patching the sibling
// links around it.
func (s *sceneImpl) unlink(index int, n *node) {
	if n.previousSibling != none {
		s.nodes[n.previousSibling].nextSibling = n.nextSibling
	}
	if n.nextSibling != none {
		s.nodes[n.nextSibling].previousSibling = n.previousSibling
	}
	if n.parent != none {
		p := &s.nodes[n.parent]
		if p.firstChild == index {
			p.firstChild = n.nextSibling
		}
		if p.lastChild == index {
			p.lastChild = n.previousSibling
		}
	}
}

// freeSubtree recursively releases a node and its descendants. Advancing
// the generation on release is what makes outstanding ids stale.
func (s *sceneImpl) freeSubtree(index int) {
	n := &s.nodes[index]
	for child := n.firstChild; child != none; {
		next := s.nodes[child].nextSibling
		s.freeSubtree(child)
		child = next
	}
	n.live = false
	n.generation++
	n.meshRef = nil
	n.lightSource = nil
	n.lightDirection = nil
	n.lightCone = nil
	n.camera = nil
	if s.hasCamera && s.mainCamera.Index == index {
		s.hasCamera = false
	}
	s.free = append(s.free, index)
}

func (s *sceneImpl) Len() int {
	count := 0
	for i := range s.nodes {
		if s.nodes[i].live {
			count++
		}
	}
	return count
}
