package asset

import (
	"bytes"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// Bundle is a batch of encoded asset payloads loaded together, typically
// the full content pack of a scene.
type Bundle struct {
	// Materials are encoded MaterialFile payloads.
	Materials [][]byte

	// MaterialInstances are encoded MaterialInstanceFile payloads.
	MaterialInstances [][]byte

	// Meshes are encoded MeshFile payloads.
	Meshes [][]byte
}

// decodedBundle holds the bundle after the parallel decode phase, in the
// same order as the input payloads.
type decodedBundle struct {
	materials []*MaterialFile
	instances []*MaterialInstanceFile
	meshes    []*MeshFile
}

func (r *registryImpl) RegisterBundle(ctx gpu.Context, bundle Bundle) error {
	decoded, err := decodeBundle(bundle)
	if err != nil {
		return err
	}

	// GPU uploads and registration stay serial on the caller. Materials
	// first so instances find their parents, meshes last.
	for _, file := range decoded.materials {
		if _, err := r.RegisterMaterialFile(ctx, file); err != nil {
			return err
		}
	}
	for _, file := range decoded.instances {
		if _, err := r.RegisterMaterialInstanceFile(file); err != nil {
			return err
		}
	}
	for _, file := range decoded.meshes {
		if _, err := r.RegisterMeshFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// decodeBundle runs the CPU-bound decode of every payload on a worker pool.
// A WaitGroup provides the completion barrier; results land in per-index
// slots so no ordering is lost to scheduling.
func decodeBundle(bundle Bundle) (*decodedBundle, error) {
	decoded := &decodedBundle{
		materials: make([]*MaterialFile, len(bundle.Materials)),
		instances: make([]*MaterialInstanceFile, len(bundle.MaterialInstances)),
		meshes:    make([]*MeshFile, len(bundle.Meshes)),
	}
	errs := make([]error, len(bundle.Materials)+len(bundle.MaterialInstances)+len(bundle.Meshes))

	pool := worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), 256, 1*time.Second)
	var wg sync.WaitGroup
	taskID := 0
	submit := func(do func() error) {
		wg.Add(1)
		slot := taskID
		pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				errs[slot] = do()
				return nil, nil
			},
		})
		taskID++
	}

	for i, payload := range bundle.Materials {
		index, data := i, payload
		submit(func() error {
			file, err := DecodeMaterialFile(bytes.NewReader(data))
			if err != nil {
				return err
			}
			decoded.materials[index] = file
			return nil
		})
	}
	for i, payload := range bundle.MaterialInstances {
		index, data := i, payload
		submit(func() error {
			file, err := DecodeMaterialInstanceFile(bytes.NewReader(data))
			if err != nil {
				return err
			}
			decoded.instances[index] = file
			return nil
		})
	}
	for i, payload := range bundle.Meshes {
		index, data := i, payload
		submit(func() error {
			file, err := DecodeMeshFile(bytes.NewReader(data))
			if err != nil {
				return err
			}
			decoded.meshes[index] = file
			return nil
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return decoded, nil
}
