package scene

// SceneBuilderOption is a functional option for configuring a Scene at
// construction.
type SceneBuilderOption func(*sceneImpl)

// WithCapacity preallocates arena storage for the expected entity count, so
// scenes with a known size avoid growth copies while spawning.
//
// Parameters:
//   - capacity: the expected number of live transforms
//
// Returns:
//   - SceneBuilderOption: a function that sets the arena capacity
func WithCapacity(capacity int) SceneBuilderOption {
	return func(s *sceneImpl) {
		if capacity > 0 {
			s.nodes = make([]node, 0, capacity)
			s.free = make([]int, 0, capacity/4)
		}
	}
}
