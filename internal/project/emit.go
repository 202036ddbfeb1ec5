package project

import (
	"fmt"

	"havoc/internal/nativeir"
)

// ArtifactKind maps the manifest's [build].emit string to the native IR
// sink's ArtifactKind.
func ArtifactKind(emit string) (nativeir.ArtifactKind, error) {
	switch emit {
	case "exe", "":
		return nativeir.ArtifactExecutable, nil
	case "obj":
		return nativeir.ArtifactObject, nil
	case "shared":
		return nativeir.ArtifactSharedLibrary, nil
	case "asm":
		return nativeir.ArtifactAssembly, nil
	default:
		return 0, fmt.Errorf("unknown [build].emit %q (want exe, obj, shared, or asm)", emit)
	}
}
