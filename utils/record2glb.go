package utils

import (
	"fmt"
	"os"

	"github.com/voxelsplace/landbuilder/api"
	"github.com/voxelsplace/landbuilder/config"
)

// RunRecord2GLB meshes a land record into a .glb file.
func RunRecord2GLB(cfg config.Config, inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	glb, err := api.RecordToGLB(cfg, data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := os.WriteFile(outPath, glb, 0o644); err != nil {
		return err
	}
	fmt.Printf(".glb saved (%d bytes)\n", len(glb))
	return nil
}
