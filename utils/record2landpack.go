package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxelsplace/landbuilder/api"
	"github.com/voxelsplace/landbuilder/codec"
)

// CreatePack reads land records and writes them to a .landpack. Inputs are
// read concurrently; names are the file base names.
func CreatePack(inputFiles []string, outputFile string, comp codec.Compression) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no record files provided")
	}
	type item struct {
		name string
		data []byte
		err  error
	}
	items := make([]item, len(inputFiles))

	var wg sync.WaitGroup
	for i, path := range inputFiles {
		i, path := i, path // per-iteration copies; go.mod targets go 1.21
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := os.ReadFile(path)
			items[i] = item{name: filepath.Base(path), data: b, err: err}
		}()
	}
	wg.Wait()

	files := make(map[string][]byte, len(items))
	for i, it := range items {
		if it.err != nil {
			return it.err
		}
		if _, dup := files[it.name]; dup {
			return fmt.Errorf("duplicate entry name %s (%s)", it.name, inputFiles[i])
		}
		files[it.name] = it.data
	}

	start := time.Now()
	data, err := api.PackRecords(files, comp)
	if err != nil {
		return err
	}
	fmt.Printf("packing (%s) took %d ms\n", comp, time.Since(start).Milliseconds())
	return os.WriteFile(outputFile, data, 0o644)
}

// UnpackToDir writes the records of a .landpack into outputDir.
func UnpackToDir(packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	files, err := api.UnpackToMemory(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(files))
	for name, b := range files {
		name, b := name, b // per-iteration copies; go.mod targets go 1.21
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := os.WriteFile(filepath.Join(outputDir, filepath.Base(name)), b, 0o644); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	return <-errCh
}
