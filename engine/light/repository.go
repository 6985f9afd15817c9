package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/material"
)

// slot is one classified light ready for upload: the source payload plus the
// vec3 that fills the position_or_direction field of its uniform slot.
type slot struct {
	source              Source
	positionOrDirection mgl32.Vec3
}

// repositoryImpl is the implementation of the Repository interface.
type repositoryImpl struct {
	ambient     *Source
	directional []slot
	point       []slot
	spot        []slot
}

// Repository aggregates the enabled lights of a frame by class and uploads
// them to lit materials through the materials' cached slot locations.
//
// The repository is rebuilt from scratch every frame before rendering;
// between Rebuild calls its contents are a snapshot, never incrementally
// patched.
type Repository interface {
	// Rebuild replaces the repository's contents with a fresh
	// classification of the given entries. Ambient entries merge additively
	// into at most one ambient term; with zero ambient entries the ambient
	// term is absent, not black.
	//
	// Parameters:
	//   - entries: the enabled lights collected from the scene
	Rebuild(entries []Entry)

	// Ambient returns the merged ambient term.
	//
	// Returns:
	//   - Source: the merged ambient light
	//   - bool: false when the frame has no ambient lights
	Ambient() (Source, bool)

	// Config returns the per-class light counts of the current snapshot,
	// used to size material location lookups.
	//
	// Returns:
	//   - material.LightConfig: the active light counts
	Config() material.LightConfig

	// SetMaterialUniforms uploads the snapshot to a material's light
	// uniform slots. The material's locations must already be resolved for
	// this repository's Config; slots the program does not declare are
	// skipped silently.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - m: the lit material to upload into
	SetMaterialUniforms(ctx gpu.Context, m material.Material)
}

var _ Repository = &repositoryImpl{}

// NewRepository creates an empty light repository.
//
// Returns:
//   - Repository: the repository
func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Rebuild(entries []Entry) {
	r.ambient = nil
	r.directional = r.directional[:0]
	r.point = r.point[:0]
	r.spot = r.spot[:0]

	for _, e := range entries {
		switch e.Classify() {
		case KindDirectional:
			r.directional = append(r.directional, slot{source: e.Source, positionOrDirection: *e.Direction})
		case KindPoint:
			r.point = append(r.point, slot{source: e.Source, positionOrDirection: *e.Position})
		case KindSpot:
			r.spot = append(r.spot, slot{source: e.Source, positionOrDirection: *e.Position})
		case KindAmbient:
			r.mergeAmbient(e.Source)
		}
	}
}

// mergeAmbient folds one more ambient source into the single ambient term.
// The running color is pre-scaled by the running intensity before the new
// contribution is added, so the merged term is order-independent in its sum
// of color*intensity products.
func (r *repositoryImpl) mergeAmbient(s Source) {
	if r.ambient == nil {
		copied := s
		r.ambient = &copied
		return
	}
	r.ambient.Color = r.ambient.Color.Mul(r.ambient.Intensity).Add(s.Color.Mul(s.Intensity))
	r.ambient.Intensity += s.Intensity
}

func (r *repositoryImpl) Ambient() (Source, bool) {
	if r.ambient == nil {
		return Source{}, false
	}
	return *r.ambient, true
}

func (r *repositoryImpl) Config() material.LightConfig {
	return material.LightConfig{
		Directional: len(r.directional),
		Point:       len(r.point),
		Spot:        len(r.spot),
	}
}

func (r *repositoryImpl) SetMaterialUniforms(ctx gpu.Context, m material.Material) {
	globals := m.GlobalLocations()

	if globals.AmbientLight != gpu.UniformLocationNone {
		ambient := [4]float32{0, 0, 0, 0}
		if r.ambient != nil {
			ambient = [4]float32{r.ambient.Color[0], r.ambient.Color[1], r.ambient.Color[2], r.ambient.Intensity}
		}
		ctx.Uniform4fv(globals.AmbientLight, ambient[:])
	}

	uploadClass(ctx, r.directional, globals.Directional)
	uploadClass(ctx, r.point, globals.Point)
	uploadClass(ctx, r.spot, globals.Spot)
}

// uploadClass writes one class of lights into its resolved slot locations.
// Slots beyond the resolved count and fields the program does not declare
// are skipped.
func uploadClass(ctx gpu.Context, slots []slot, locations []material.LightSlotLocations) {
	for i, s := range slots {
		if i >= len(locations) {
			return
		}
		loc := locations[i]
		if loc.Color != gpu.UniformLocationNone {
			ctx.Uniform3fv(loc.Color, s.source.Color[:])
		}
		if loc.Intensity != gpu.UniformLocationNone {
			ctx.Uniform1f(loc.Intensity, s.source.Intensity)
		}
		if loc.Attenuation != gpu.UniformLocationNone {
			ctx.Uniform1f(loc.Attenuation, s.source.Attenuation)
		}
		if loc.PositionOrDirection != gpu.UniformLocationNone {
			ctx.Uniform3fv(loc.PositionOrDirection, s.positionOrDirection[:])
		}
	}
}
