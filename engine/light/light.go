// Package light implements scene lighting: the light source component
// attached to scene entities and the per-frame repository that classifies
// active lights and uploads them to lit materials.
package light

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Source is the common payload of every light: color, intensity, and
// distance attenuation. What kind of light a source becomes is decided by
// the optional data attached alongside it, not by the source itself.
type Source struct {
	// Color is the light color.
	Color mgl32.Vec3

	// Intensity scales the light's contribution.
	Intensity float32

	// Attenuation is the distance falloff factor. Unused by directional and
	// ambient lights.
	Attenuation float32
}

// Cone is the angular falloff of a spot light.
type Cone struct {
	// Angle is the full cone angle in radians.
	Angle float32

	// Blend is the fraction of the cone over which intensity fades to zero
	// at the edge, in [0, 1].
	Blend float32
}

// Kind is the classification a light entry resolves to.
type Kind int

const (
	// KindAmbient lights have neither direction nor position.
	KindAmbient Kind = iota

	// KindDirectional lights have a direction but not the position and cone
	// a spot light needs.
	KindDirectional

	// KindPoint lights have a position but no direction.
	KindPoint

	// KindSpot lights have a position, a direction, and a cone.
	KindSpot
)

// Entry is one enabled light collected from the scene for a frame: the
// source plus whatever spatial data the entity carries. Classification
// derives from which optional fields are present.
type Entry struct {
	// Source is the light payload.
	Source Source

	// Direction is the world-space direction, nil when the entity has none.
	Direction *mgl32.Vec3

	// Cone is the spot cone, nil for non-spot lights.
	Cone *Cone

	// Position is the world-space position from the entity's transform, nil
	// for entities outside the transform graph.
	Position *mgl32.Vec3
}

// Classify resolves the entry's light kind from its attached data.
// Direction, cone, and position together make a spot light; a direction
// without the rest makes a directional light; a bare position makes a point
// light; a bare source is ambient.
//
// Returns:
//   - Kind: the resolved classification
func (e Entry) Classify() Kind {
	switch {
	case e.Direction != nil && e.Cone != nil && e.Position != nil:
		return KindSpot
	case e.Direction != nil:
		return KindDirectional
	case e.Position != nil:
		return KindPoint
	default:
		return KindAmbient
	}
}
