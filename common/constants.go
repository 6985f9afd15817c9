package common

// Well-known global uniform names resolved by every Material at location
// lookup time. Shaders that want camera or light data declare uniforms with
// these names.
const (
	// ViewMatrixName is the uniform name for the camera view matrix.
	ViewMatrixName = "u_view_matrix"

	// ProjectionMatrixName is the uniform name for the camera projection matrix.
	ProjectionMatrixName = "u_projection_matrix"

	// CameraPositionName is the uniform name for the camera world position.
	CameraPositionName = "u_camera_position"

	// WorldTransformName is the uniform name for the per-object world (model) matrix.
	WorldTransformName = "u_world_transform"

	// AmbientLightName is the uniform name for the merged ambient light,
	// uploaded as a vec4 of (r, g, b, intensity).
	AmbientLightName = "u_ambiant_light"

	// DirectionalLightsName is the uniform array name for directional lights.
	DirectionalLightsName = "u_dir_lights"

	// PointLightsName is the uniform array name for point lights.
	PointLightsName = "u_point_lights"

	// SpotLightsName is the uniform array name for spot lights.
	SpotLightsName = "u_spot_lights"
)

// Field names of the GLSL Light struct used inside the light uniform arrays.
const (
	// LightColorName is the color field of the Light struct.
	LightColorName = "color"

	// LightIntensityName is the intensity field of the Light struct.
	LightIntensityName = "intensity"

	// LightAttenuationName is the attenuation field of the Light struct.
	LightAttenuationName = "attenuation"

	// LightPositionDirectionName is the position-or-direction field of the
	// Light struct: a world position for point and spot lights, a direction
	// for directional lights.
	LightPositionDirectionName = "position_or_direction"
)

// Well-known vertex attribute names produced by the asset pipeline.
const (
	// VertexBufferName is the vertex position attribute name.
	VertexBufferName = "a_position"

	// NormalBufferName is the vertex normal attribute name.
	NormalBufferName = "a_normal"

	// UVBufferName is the texture coordinate attribute name.
	UVBufferName = "a_tex_coordinates"

	// WeightBufferName is the skeletal joint-weight attribute name.
	WeightBufferName = "a_weights"
)
