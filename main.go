//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/utils"
)

func usage() {
	fmt.Println("Usage: landtool <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  validate input.json                     (import a land record and report dropped entries)")
	fmt.Println("  normalize input.json output.json        (rewrite a record as the editor would export it)")
	fmt.Println("  digest input.json                       (print the occupancy digest of a record)")
	fmt.Println("  toglb input.json output.glb             (convert a record -> .glb using greedy mesh)")
	fmt.Println("  pack2glb input.landpack output.glb      (convert .landpack -> .glb, one node per entry)")
	fmt.Println("  pack [-c none|zlib|zstd] output.landpack input1.json [input2.json ...]   (pack records into a .landpack)")
	fmt.Println("  unpack input.landpack output_dir        (unpack .landpack into a directory of records)")
	fmt.Println("  gennoise <percentage> <amount> <output_dir>                         (generate N random lands with fixed quota fill %)")
	fmt.Println("  gennoise <percentageMin> <percentageMax> <amount> <output_dir>     (generate with per-file random fill in [min,max])")
	fmt.Printf("Configuration is read from $%s when set.\n", config.EnvPath)
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		fail(err)
	}

	args := os.Args[2:]
	need := func(n int) {
		if len(args) != n {
			usage()
			os.Exit(1)
		}
	}

	switch os.Args[1] {
	case "validate":
		need(1)
		err = utils.RunValidate(cfg, args[0])
	case "normalize":
		need(2)
		err = utils.RunNormalize(cfg, args[0], args[1])
	case "digest":
		need(1)
		err = utils.RunDigest(cfg, args[0])
	case "toglb":
		need(2)
		err = utils.RunRecord2GLB(cfg, args[0], args[1])
	case "pack2glb":
		need(2)
		err = utils.RunLandpack2GLB(cfg, args[0], args[1])
	case "pack":
		comp := codec.CompZstd
		if len(args) > 0 && (args[0] == "-c" || strings.HasPrefix(args[0], "-c=")) {
			var name string
			if args[0] == "-c" {
				if len(args) < 2 {
					usage()
					os.Exit(1)
				}
				name, args = args[1], args[2:]
			} else {
				name, args = strings.TrimPrefix(args[0], "-c="), args[1:]
			}
			if comp, err = codec.ParseCompression(name); err != nil {
				fail(err)
			}
		}
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		err = utils.CreatePack(args[1:], args[0], comp)
	case "unpack":
		need(2)
		err = utils.UnpackToDir(args[0], args[1])
	case "gennoise":
		// gennoise <percentage> <amount> <output_dir>
		// gennoise <percentageMin> <percentageMax> <amount> <output_dir>
		if len(args) != 3 && len(args) != 4 {
			usage()
			os.Exit(1)
		}
		spec := utils.NoiseSpec{Seed: time.Now().UnixNano()}
		if _, err := fmt.Sscan(args[0], &spec.MinFill); err != nil {
			fail(err)
		}
		spec.MaxFill = spec.MinFill
		if len(args) == 4 {
			if _, err := fmt.Sscan(args[1], &spec.MaxFill); err != nil {
				fail(err)
			}
			args = args[1:]
		}
		if _, err := fmt.Sscan(args[1], &spec.Amount); err != nil {
			fail(err)
		}
		err = utils.RunGenerateNoise(cfg, spec, args[2])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}

	fmt.Println("Operation completed!")
}
