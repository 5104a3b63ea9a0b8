// grftool inspects GRF archives and the ground meshes the viewer loads from them.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-gl/internal/engine/material"
	"github.com/Faultbox/midgard-gl/internal/engine/world"
	"github.com/Faultbox/midgard-gl/internal/logger"
	"github.com/Faultbox/midgard-gl/pkg/formats"
	"github.com/Faultbox/midgard-gl/pkg/grf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "gnd":
		cmdGND(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`grftool - GRF archive and ground mesh utility

Usage:
  grftool <command> [options]

Commands:
  info <file.grf>                       Show archive information
  list [-n N] <file.grf> [pattern]      List files (glob on the base name or substring)
  extract <file.grf> <pattern> [output] Extract matching files keeping their paths
  gnd [-v] <file.grf|dir> <map.gnd>     Describe a ground mesh and the world shaders it needs

Examples:
  grftool info data.grf
  grftool list data.grf "*.gnd"
  grftool extract data.grf "prontera.*" ./output
  grftool gnd data.grf data/prontera.gnd`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func openArchive(name string) *grf.Archive {
	archive, err := grf.Open(name)
	if err != nil {
		fail("Error: %v", err)
	}
	return archive
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fail("Usage: grftool info <file.grf>")
	}
	archive := openArchive(args[0])
	defer archive.Close()

	var entries []*grf.Entry
	for _, name := range archive.List() {
		if e, ok := archive.Entry(name); ok {
			entries = append(entries, e)
		}
	}
	printInfo(os.Stdout, args[0], entries)
}

// extStat counts the files sharing an extension.
type extStat struct {
	ext   string
	count int
	size  uint64
}

// extStats groups entries by extension, largest count first.
func extStats(entries []*grf.Entry) []extStat {
	byExt := make(map[string]*extStat)
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name))
		if ext == "" {
			ext = "(no ext)"
		}
		s, ok := byExt[ext]
		if !ok {
			s = &extStat{ext: ext}
			byExt[ext] = s
		}
		s.count++
		s.size += uint64(e.UncompressedSize)
	}
	out := make([]extStat, 0, len(byExt))
	for _, s := range byExt {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].ext < out[j].ext
	})
	return out
}

func printInfo(w io.Writer, name string, entries []*grf.Entry) {
	var total uint64
	for _, e := range entries {
		total += uint64(e.UncompressedSize)
	}
	fmt.Fprintf(w, "Archive: %s\n", name)
	fmt.Fprintf(w, "Files:   %d\n", len(entries))
	fmt.Fprintf(w, "Size:    %.2f MB\n", float64(total)/(1024*1024))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Files by type:")
	for _, s := range extStats(entries) {
		fmt.Fprintf(w, "  %-10s %6d  %8.2f MB\n", s.ext, s.count, float64(s.size)/(1024*1024))
	}
}

// matchName reports whether name matches a glob on its base name or contains pattern.
func matchName(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	if ok, _ := path.Match(pattern, path.Base(name)); ok {
		return true
	}
	return !strings.ContainsAny(pattern, "*?[") && strings.Contains(name, pattern)
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: grftool list <file.grf> [pattern]")
	}
	archive := openArchive(fs.Arg(0))
	defer archive.Close()

	count := 0
	for _, f := range archive.List() {
		if !matchName(fs.Arg(1), f) {
			continue
		}
		fmt.Println(f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}
	fmt.Fprintf(os.Stderr, "\n(%d files)\n", count)
}

func cmdExtract(args []string) {
	if len(args) < 2 {
		fail("Usage: grftool extract <file.grf> <pattern> [output_dir]")
	}
	outputDir := "."
	if len(args) > 2 {
		outputDir = args[2]
	}
	archive := openArchive(args[0])
	defer archive.Close()

	extracted := 0
	for _, f := range archive.List() {
		if !matchName(args[1], f) {
			continue
		}
		data, err := archive.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}
		outputPath := filepath.Join(outputDir, filepath.FromSlash(strings.ReplaceAll(f, "\\", "/")))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			continue
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}
		fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
		extracted++
	}
	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
}

func cmdGND(args []string) {
	flags := flag.NewFlagSet("gnd", flag.ExitOnError)
	verbose := flags.Bool("v", false, "Log world build warnings")
	flags.Parse(args)

	if flags.NArg() < 2 {
		fail("Usage: grftool gnd <file.grf|dir> <map.gnd>")
	}
	level := "error"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail("Logger error: %v", err)
	}
	defer logger.Sync()

	var data fs.FS
	if st, err := os.Stat(flags.Arg(0)); err == nil && st.IsDir() {
		data = os.DirFS(flags.Arg(0))
	} else {
		archive := openArchive(flags.Arg(0))
		defer archive.Close()
		data = archive
	}

	raw, err := fs.ReadFile(data, strings.ReplaceAll(flags.Arg(1), "\\", "/"))
	if err != nil {
		fail("Error: %v", err)
	}
	gnd, err := formats.ParseGND(raw)
	if err != nil {
		fail("Error: %v", err)
	}
	w, err := world.Build(gnd, material.NewRegistry(), nil)
	if err != nil {
		fail("Error: %v", err)
	}
	describeGround(os.Stdout, gnd, w)
}

// describeGround prints the mesh header and the shader groups of its world.
func describeGround(out io.Writer, gnd *formats.GND, w *world.World) {
	fmt.Fprintf(out, "Version:   %s\n", gnd.Version)
	fmt.Fprintf(out, "Size:      %dx%d tiles, zoom %g\n", gnd.Width, gnd.Height, gnd.Zoom)
	fmt.Fprintf(out, "Lightmaps: %d cells in %d pages\n", len(gnd.Lightmaps), w.Pages)
	fmt.Fprintf(out, "Surfaces:  %d in the file, %d built\n", len(gnd.Surfaces), w.NumSurfaces())
	fmt.Fprintf(out, "Bounds:    %v - %v\n", w.Mins, w.Maxs)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Textures (%d):\n", len(gnd.Textures))
	for i, name := range gnd.Textures {
		fmt.Fprintf(out, "  %3d  %s\n", i, name)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Shaders (%d):\n", len(w.Groups))
	for _, g := range w.Groups {
		fmt.Fprintf(out, "  %6d  %s\n", len(g.Surfaces), g.Shader.Name)
	}
}
