package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/engine/camera"
	"github.com/wtvr-engine/wtvr3d/engine/light"
)

func (s *sceneImpl) SetEnabled(id TransformID, enabled bool) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.enabled = enabled
	return nil
}

func (s *sceneImpl) Enabled(id TransformID) (bool, error) {
	n, err := s.resolve(id)
	if err != nil {
		return false, err
	}
	return n.enabled, nil
}

func (s *sceneImpl) SetMeshRef(id TransformID, ref MeshRef) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.meshRef = &ref
	return nil
}

func (s *sceneImpl) MeshRef(id TransformID) (*MeshRef, error) {
	n, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return n.meshRef, nil
}

func (s *sceneImpl) SetLightSource(id TransformID, source light.Source) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.lightSource = &source
	n.lightAmbient = false
	return nil
}

func (s *sceneImpl) SetAmbientLight(id TransformID, source light.Source) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.lightSource = &source
	n.lightAmbient = true
	return nil
}

func (s *sceneImpl) SetLightDirection(id TransformID, direction mgl32.Vec3) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.lightDirection = &direction
	return nil
}

func (s *sceneImpl) SetLightCone(id TransformID, cone light.Cone) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.lightCone = &cone
	return nil
}

func (s *sceneImpl) RemoveLight(id TransformID) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.lightSource = nil
	n.lightDirection = nil
	n.lightCone = nil
	return nil
}

func (s *sceneImpl) SetCamera(id TransformID, cam camera.Camera) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	n.camera = cam
	if !s.hasCamera {
		s.mainCamera = id
		s.hasCamera = true
	}
	return nil
}

func (s *sceneImpl) SetMainCamera(id TransformID) error {
	n, err := s.resolve(id)
	if err != nil {
		return err
	}
	if n.camera == nil {
		return ErrStaleTransform
	}
	s.mainCamera = id
	s.hasCamera = true
	return nil
}

func (s *sceneImpl) MainCamera() (camera.Camera, TransformID, bool) {
	if !s.hasCamera {
		return nil, TransformID{}, false
	}
	n, err := s.resolve(s.mainCamera)
	if err != nil || n.camera == nil {
		return nil, TransformID{}, false
	}
	return n.camera, s.mainCamera, true
}

func (s *sceneImpl) MeshEntities() []MeshEntity {
	var entities []MeshEntity
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.live || !n.enabled || n.meshRef == nil {
			continue
		}
		entities = append(entities, MeshEntity{
			Transform: TransformID{Index: i, Generation: n.generation},
			Ref:       *n.meshRef,
		})
	}
	return entities
}

func (s *sceneImpl) LightEntries() []light.Entry {
	var entries []light.Entry
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.live || !n.enabled || n.lightSource == nil {
			continue
		}
		entry := light.Entry{Source: *n.lightSource}
		if !n.lightAmbient {
			if n.lightDirection != nil {
				direction := n.world.Mat3().Mul3x1(*n.lightDirection)
				entry.Direction = &direction
			}
			if n.lightCone != nil {
				cone := *n.lightCone
				entry.Cone = &cone
			}
			position := mgl32.Vec3{n.world[12], n.world[13], n.world[14]}
			entry.Position = &position
		}
		entries = append(entries, entry)
	}
	return entries
}
