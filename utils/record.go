package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voxelsplace/landbuilder/api"
	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
)

// RunValidate imports a record and prints what would be kept and dropped.
// It fails only when the document is not a record at all.
func RunValidate(cfg config.Config, inPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	s, e, rep, err := api.Load(cfg, data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	fmt.Printf("%s: %d voxels, %d decals, %d dropped\n", inPath, s.Len(), e.Len(), rep.Dropped())
	printReport(rep)
	return nil
}

// RunNormalize rewrites a record the way the editor would export it.
func RunNormalize(cfg config.Config, inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, rep, err := api.NormalizeRecord(cfg, data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')
	if err := os.WriteFile(outPath, pretty.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("record normalized (%d bytes, %d dropped)\n", pretty.Len(), rep.Dropped())
	return nil
}

func RunDigest(cfg config.Config, inPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	d, err := api.RecordDigest(cfg, data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	fmt.Println(d)
	return nil
}

func printReport(rep codec.ImportReport) {
	rows := []struct {
		name string
		n    int
	}{
		{"realigned", rep.Realigned},
		{"replaced", rep.Replaced},
		{"truncated", rep.Truncated},
		{"malformed", rep.Malformed},
		{"out of bounds", rep.OutOfBounds},
		{"unknown category", rep.UnknownCategory},
		{"over quota", rep.QuotaExceeded},
		{"decals malformed", rep.DecalsMalformed},
		{"decals out of bounds", rep.DecalsOutOfBounds},
		{"decals over limit", rep.DecalsOverLimit},
	}
	for _, r := range rows {
		if r.n > 0 {
			fmt.Printf("  %-22s %d\n", r.name, r.n)
		}
	}
	if rep.ForeignCubeSize {
		fmt.Println("  warning: record was written for another cube size")
	}
}
