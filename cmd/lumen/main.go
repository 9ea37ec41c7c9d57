// Command lumen is the render CLI, grounded on the teacher's flag-based
// main.go but restructured into the render/help subcommands spec.md
// section 6 names, reading scene and render state from YAML documents
// instead of building a scene in Go code.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/df07/go-progressive-raytracer/pkg/config"
	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/renderer"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

const (
	exitOK           = 0
	exitConfigError  = 1
	exitRuntimeAbort = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return exitConfigError
	}

	switch args[0] {
	case "help", "-h", "--help":
		showUsage()
		return exitOK
	case "render":
		return runRender(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "lumen: unknown command %q\n", args[0])
		showUsage()
		return exitConfigError
	}
}

func showUsage() {
	fmt.Println("lumen - physically based light-transport renderer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lumen render --scene <scene.yaml> --render-option <render.yaml> [--out <image.png>]")
	fmt.Println("  lumen help")
}

func runRender(args []string) int {
	flags, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		return exitConfigError
	}

	sceneDoc, renderDoc, err := loadDocuments(flags.scenePath, flags.renderPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		return exitConfigError
	}

	decodedRender, err := config.DecodeRender(renderDoc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		return exitConfigError
	}

	sc, err := config.DecodeScene(sceneDoc, decodedRender.Options.Width, decodedRender.Options.Height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		return exitConfigError
	}

	logger := renderer.NewDefaultLogger()
	if err := renderAndSave(sc, decodedRender, flags.outPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "lumen: render aborted: %v\n", err)
		return exitRuntimeAbort
	}
	return exitOK
}

func renderAndSave(sc *scene.Scene, dr config.DecodedRender, outPath string, logger core.Logger) error {
	sched := renderer.NewScheduler(sc, dr.NewIntegrator, dr.Options, logger)
	if err := sched.Run(context.Background()); err != nil {
		return err
	}
	return sched.Film().Save(outPath, sched.Options.SplatScale)
}

type renderFlags struct {
	scenePath  string
	renderPath string
	outPath    string
}

func parseRenderFlags(args []string) (renderFlags, error) {
	flags := renderFlags{outPath: "render.png"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--scene":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("--scene requires a value")
			}
			i++
			flags.scenePath = args[i]
		case "--render-option":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("--render-option requires a value")
			}
			i++
			flags.renderPath = args[i]
		case "--out":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("--out requires a value")
			}
			i++
			flags.outPath = args[i]
		default:
			return flags, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	if flags.scenePath == "" {
		return flags, fmt.Errorf("--scene is required")
	}
	if flags.renderPath == "" {
		return flags, fmt.Errorf("--render-option is required")
	}
	return flags, nil
}

func loadDocuments(scenePath, renderPath string) (config.Node, config.Node, error) {
	sceneBytes, err := os.ReadFile(scenePath)
	if err != nil {
		return config.Node{}, config.Node{}, fmt.Errorf("reading scene document: %w", err)
	}
	sceneDoc, err := config.ParseYAML(sceneBytes)
	if err != nil {
		return config.Node{}, config.Node{}, err
	}

	renderBytes, err := os.ReadFile(renderPath)
	if err != nil {
		return config.Node{}, config.Node{}, fmt.Errorf("reading render document: %w", err)
	}
	renderDoc, err := config.ParseYAML(renderBytes)
	if err != nil {
		return config.Node{}, config.Node{}, err
	}

	return sceneDoc, renderDoc, nil
}
