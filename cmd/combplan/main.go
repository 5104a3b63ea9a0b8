// combplan prints and checks the render passes computed for a material file
// on the fixed-function hardware profiles.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Faultbox/midgard-gl/internal/engine/combiner"
	"github.com/Faultbox/midgard-gl/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "plan":
		cmdPlan(args)
	case "verify":
		cmdVerify(args)
	case "profiles":
		cmdProfiles()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`combplan - multitexture pass planner

Usage:
  combplan <command> [options]

Commands:
  plan [options] <materials.yaml> [pattern]   Print the passes of each shader
  verify [options] <materials.yaml>           Compare packed passes against single-texture rendering
  profiles                                    List hardware profiles

Plan options:
  -profile name     Hardware profile (default geforce)
  -overbright n     Lightmap overbright shift (0..2)
  -fog              Add a fog volume to every batch
  -dlights n        Light the batch with n dynamic lights
  -fullbright, -lightmap, -fillrate   Debug draw modes
  -v                Trace packing decisions

Examples:
  combplan plan -profile tnt2 materials.yaml "textures/base_wall/*"
  combplan verify -profile all materials.yaml`)
}

func initLog(verbose bool) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
}

func cmdPlan(args []string) {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	profile := fs.String("profile", "geforce", "Hardware profile")
	overbright := fs.Int("overbright", 1, "Overbright shift (0..2)")
	fog := fs.Bool("fog", false, "Add a fog volume")
	dlights := fs.Int("dlights", 0, "Number of dynamic lights")
	fullbright := fs.Bool("fullbright", false, "Fullbright debug mode")
	lightmap := fs.Bool("lightmap", false, "Lightmap-only debug mode")
	fillRate := fs.Bool("fillrate", false, "Fill-rate heatmap")
	verbose := fs.Bool("v", false, "Trace packing decisions")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: combplan plan [options] <materials.yaml> [pattern]")
		os.Exit(1)
	}
	initLog(*verbose)
	defer logger.Sync()

	caps, err := combiner.Profile(*profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	pattern := "*"
	if fs.NArg() > 1 {
		pattern = fs.Arg(1)
	}

	reg, err := loadMaterials(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	settings := combiner.Settings{
		Overbright:    uint8(*overbright),
		DynamicLights: true,
		Fullbright:    *fullbright,
		LightmapOnly:  *lightmap,
		ShowFillRate:  *fillRate,
	}
	if *verbose {
		settings.SpyShader = pattern
	}
	opts := planOptions{Fog: *fog, Dlights: *dlights}

	fmt.Printf("Profile: %s (%s)\n\n", *profile, caps)
	if err := printPlans(os.Stdout, reg, caps, settings, pattern, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	profile := fs.String("profile", "all", "Hardware profile, or all")
	tolerance := fs.Float64("tolerance", 0.01, "Largest accepted channel difference")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: combplan verify [options] <materials.yaml>")
		os.Exit(1)
	}
	initLog(false)
	defer logger.Sync()

	names := profileNames()
	if *profile != "all" {
		if _, err := combiner.Profile(*profile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		names = []string{*profile}
	}

	reg, err := loadMaterials(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, name := range names {
		results := verify(reg, combiner.Profiles[name], float32(*tolerance))
		for _, r := range results {
			if !r.OK {
				failed++
				fmt.Printf("FAIL  %-12s %s: %d passes, diff %.4f (want %v, got %v)\n",
					name, r.Shader, r.Passes, r.Diff, r.Want, r.Got)
			}
		}
		fmt.Printf("%-12s %d shaders checked\n", name, len(results))
	}
	if failed > 0 {
		fmt.Printf("\n%d mismatches\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nall plans match single-texture rendering")
}

func cmdProfiles() {
	for _, name := range profileNames() {
		fmt.Printf("  %-12s %s\n", name, combiner.Profiles[name])
	}
}

func profileNames() []string {
	names := make([]string, 0, len(combiner.Profiles))
	for n := range combiner.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
