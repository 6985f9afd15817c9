package material

import (
	"fmt"

	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// LightConfig is the number of active lights of each class a material's
// program must address. Lookup of light array slots is sized by it.
type LightConfig struct {
	// Directional is the number of directional lights.
	Directional int

	// Point is the number of point lights.
	Point int

	// Spot is the number of spot lights.
	Spot int
}

// LightSlotLocations are the resolved locations of one element of a light
// uniform array, one location per field of the GLSL Light struct.
type LightSlotLocations struct {
	// Color is the location of the color field.
	Color gpu.UniformLocation

	// Intensity is the location of the intensity field.
	Intensity gpu.UniformLocation

	// Attenuation is the location of the attenuation field.
	Attenuation gpu.UniformLocation

	// PositionOrDirection is the location of the position_or_direction field.
	PositionOrDirection gpu.UniformLocation
}

// GlobalUniformLocations caches the resolved locations of the well-known
// global uniforms: camera matrices, the per-object world transform slot,
// and the light array slots. Populated once by Material.LookupLocations and
// grown when the light configuration gains lights.
type GlobalUniformLocations struct {
	// ViewMatrix is the location of the camera view matrix.
	ViewMatrix gpu.UniformLocation

	// ProjectionMatrix is the location of the camera projection matrix.
	ProjectionMatrix gpu.UniformLocation

	// CameraPosition is the location of the camera world position.
	CameraPosition gpu.UniformLocation

	// WorldTransform is the location of the per-object world matrix.
	WorldTransform gpu.UniformLocation

	// AmbientLight is the location of the merged ambient light vec4.
	AmbientLight gpu.UniformLocation

	// Directional holds the resolved directional light array slots.
	Directional []LightSlotLocations

	// Point holds the resolved point light array slots.
	Point []LightSlotLocations

	// Spot holds the resolved spot light array slots.
	Spot []LightSlotLocations

	scalarsReady bool
}

// newGlobalUniformLocations returns a cache with every location unresolved.
func newGlobalUniformLocations() GlobalUniformLocations {
	return GlobalUniformLocations{
		ViewMatrix:       gpu.UniformLocationNone,
		ProjectionMatrix: gpu.UniformLocationNone,
		CameraPosition:   gpu.UniformLocationNone,
		WorldTransform:   gpu.UniformLocationNone,
		AmbientLight:     gpu.UniformLocationNone,
	}
}

// lookup resolves the scalar global locations once, then grows each light
// slot list up to the sizes the config asks for. Already-resolved slots are
// never queried again.
func (g *GlobalUniformLocations) lookup(ctx gpu.Context, program gpu.Program, config LightConfig) {
	if !g.scalarsReady {
		g.ViewMatrix = ctx.GetUniformLocation(program, common.ViewMatrixName)
		g.ProjectionMatrix = ctx.GetUniformLocation(program, common.ProjectionMatrixName)
		g.CameraPosition = ctx.GetUniformLocation(program, common.CameraPositionName)
		g.WorldTransform = ctx.GetUniformLocation(program, common.WorldTransformName)
		g.AmbientLight = ctx.GetUniformLocation(program, common.AmbientLightName)
		g.scalarsReady = true
	}
	g.Directional = growLightSlots(ctx, program, common.DirectionalLightsName, g.Directional, config.Directional)
	g.Point = growLightSlots(ctx, program, common.PointLightsName, g.Point, config.Point)
	g.Spot = growLightSlots(ctx, program, common.SpotLightsName, g.Spot, config.Spot)
}

// growLightSlots resolves array slots [len(slots), count) for one light
// uniform array, e.g. "u_dir_lights[2].color".
func growLightSlots(ctx gpu.Context, program gpu.Program, arrayName string, slots []LightSlotLocations, count int) []LightSlotLocations {
	for i := len(slots); i < count; i++ {
		element := fmt.Sprintf("%s[%d]", arrayName, i)
		slots = append(slots, LightSlotLocations{
			Color:               ctx.GetUniformLocation(program, element+"."+common.LightColorName),
			Intensity:           ctx.GetUniformLocation(program, element+"."+common.LightIntensityName),
			Attenuation:         ctx.GetUniformLocation(program, element+"."+common.LightAttenuationName),
			PositionOrDirection: ctx.GetUniformLocation(program, element+"."+common.LightPositionDirectionName),
		})
	}
	return slots
}
