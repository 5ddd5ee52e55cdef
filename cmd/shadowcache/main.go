// shadowcache is a CLI utility for building and checking shadow topology
// caches of studio models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/studiorender/internal/assets"
	"github.com/Faultbox/studiorender/internal/config"
	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/internal/preview"
	"github.com/Faultbox/studiorender/pkg/studio"
)

var defaultCacheDir = config.Default().Shadow.CacheDir

var spewConfig = spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		cmdBuild(args)
	case "info":
		cmdInfo(args)
	case "verify":
		cmdVerify(args)
	case "preview":
		cmdPreview(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shadowcache - studio model shadow topology utility

Usage:
  shadowcache <command> [options]

Commands:
  build <gamedir> <model...>              Build and write cache files
  info <file.dat>                          Show a cache file
  verify <gamedir> <model...>             Compare cache files with the models
  preview <gamedir> <model> <out.webp>    Render the shadow footprint

Examples:
  shadowcache build valve models/scientist.mdl models/barney.mdl
  shadowcache info -dump valve/models/shadowcache/scientist.dat
  shadowcache verify valve models/scientist.mdl
  shadowcache preview -sky 1,0,-2 -body 1 valve models/barney.mdl barney.webp`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func openGame(dir string) *assets.Manager {
	m := assets.NewManager()
	m.AddSearchPath(dir)
	return m
}

func loadModels(m *assets.Manager, paths []string) []*studio.Model {
	var models []*studio.Model
	for _, p := range paths {
		_, mdl, err := m.LoadModel(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		models = append(models, mdl)
	}
	return models
}

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("out", "", "Cache directory (default <gamedir>/"+defaultCacheDir+")")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: shadowcache build [-out dir] <gamedir> <model...>")
	}
	game := fs.Arg(0)
	dir := *out
	if dir == "" {
		dir = filepath.Join(game, defaultCacheDir)
	}

	written := 0
	models := loadModels(openGame(game), fs.Args()[1:])
	for _, m := range models {
		t, err := shadow.Build(m)
		if err == nil {
			err = shadow.SaveTopology(shadow.CachePath(dir, shadow.ModelName(m)), t)
		}
		if err != nil {
			fmt.Printf("  %-40s %v\n", m.Path, err)
			continue
		}
		written++
		fmt.Printf("  %-40s %3d submodels %6d faces %6d edges\n", m.Path, len(t.SubModels), t.Faces(), t.Edges())
	}
	fmt.Printf("Wrote %d of %d models to %s\n", written, fs.NArg()-1, dir)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump every face and edge")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: shadowcache info [-dump] <file.dat>")
	}

	t, err := shadow.LoadTopology(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}

	fmt.Printf("Cache:     %s\n", fs.Arg(0))
	fmt.Printf("Submodels: %d\n", len(t.SubModels))
	fmt.Printf("Faces:     %d\n", t.Faces())
	fmt.Printf("Edges:     %d\n", t.Edges())
	fmt.Println()
	for i, sm := range t.SubModels {
		boundary := 0
		for _, e := range sm.Edges {
			if e.Boundary() {
				boundary++
			}
		}
		fmt.Printf("  %3d: %6d faces %6d edges (%d open)\n", i, len(sm.Faces), len(sm.Edges), boundary)
	}

	if *dump {
		fmt.Println()
		spewConfig.Fdump(os.Stdout, t)
	}
}

func cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	dir := fs.String("cache", "", "Cache directory (default <gamedir>/"+defaultCacheDir+")")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: shadowcache verify [-cache dir] <gamedir> <model...>")
	}
	game := fs.Arg(0)
	if *dir == "" {
		*dir = filepath.Join(game, defaultCacheDir)
	}

	stale := 0
	for _, m := range loadModels(openGame(game), fs.Args()[1:]) {
		status := verify(*dir, m)
		if status != "ok" {
			stale++
		}
		fmt.Printf("  %-40s %s\n", m.Path, status)
	}
	if stale > 0 {
		os.Exit(2)
	}
}

// verify compares the cache file of m with freshly built topology.
func verify(dir string, m *studio.Model) string {
	cached, err := shadow.LoadTopology(shadow.CachePath(dir, shadow.ModelName(m)))
	if err != nil {
		return "missing: " + err.Error()
	}
	built, err := shadow.Build(m)
	if err != nil {
		return "unbuildable: " + err.Error()
	}
	if len(cached.SubModels) != len(built.SubModels) {
		return fmt.Sprintf("stale: %d submodels, model has %d", len(cached.SubModels), len(built.SubModels))
	}
	for i := range built.SubModels {
		a, b := &cached.SubModels[i], &built.SubModels[i]
		if len(a.Faces) != len(b.Faces) || len(a.Edges) != len(b.Edges) {
			return fmt.Sprintf("stale: submodel %d differs", i)
		}
		for j := range a.Faces {
			if a.Faces[j] != b.Faces[j] {
				return fmt.Sprintf("stale: submodel %d face %d differs", i, j)
			}
		}
		for j := range a.Edges {
			if a.Edges[j] != b.Edges[j] {
				return fmt.Sprintf("stale: submodel %d edge %d differs", i, j)
			}
		}
	}
	return "ok"
}

func cmdPreview(args []string) {
	opts := preview.DefaultOptions()

	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	sky := fs.String("sky", "", "Sky vector x,y,z (default built-in light)")
	body := fs.Int("body", 0, "Body selection")
	seq := fs.Int("seq", 0, "Sequence")
	frame := fs.Float64("frame", 0, "Frame within the sequence")
	size := fs.Int("size", opts.Size, "Image size in pixels")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fail("Usage: shadowcache preview [options] <gamedir> <model> <out.webp>")
	}
	if *sky != "" {
		v, err := parseVector(*sky)
		if err != nil {
			fail("Error: -sky: %v", err)
		}
		opts.SkyVector = v
	}
	opts.Body = int32(*body)
	opts.Sequence = *seq
	opts.Frame = *frame
	opts.Size = *size

	_, m, err := openGame(fs.Arg(0)).LoadModel(fs.Arg(1))
	if err != nil {
		fail("Error: %v", err)
	}
	t, err := shadow.Build(m)
	if err != nil {
		fail("Error: %v", err)
	}
	fp, err := preview.Project(m, t, opts)
	if err != nil {
		fail("Error: %v", err)
	}
	if err := preview.Save(fs.Arg(2), preview.Render(fp, opts)); err != nil {
		fail("Error: %v", err)
	}
	size2 := fp.Size()
	fmt.Printf("Footprint %.1f x %.1f units, %d faces, %d silhouette edges -> %s\n",
		size2.X(), size2.Y(), len(fp.Faces), len(fp.Edges), fs.Arg(2))
}

// parseVector parses "x,y,z".
func parseVector(s string) ([3]float32, error) {
	var v [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}
