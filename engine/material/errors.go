package material

import (
	"fmt"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// CompileError reports a shader compilation failure with the driver's
// compiler log attached. Compilation happens exactly once, at Material
// construction, so a CompileError always aborts construction.
type CompileError struct {
	// Material is the declared name of the failing material.
	Material string

	// Stage is the shader stage that failed to compile.
	Stage gpu.ShaderType

	// Log is the compiler log reported by the context.
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("material %q: %s shader compilation failed: %s", e.Material, e.Stage, e.Log)
}

// LinkError reports a program link failure with the driver's linker log
// attached.
type LinkError struct {
	// Material is the declared name of the failing material.
	Material string

	// Log is the linker log reported by the context.
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("material %q: program link failed: %s", e.Material, e.Log)
}
