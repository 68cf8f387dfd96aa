package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"assimp-media3d/internal/convert"
	"assimp-media3d/internal/dump"
	"assimp-media3d/internal/importer"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/muesli/termenv"
)

func main() {
	verbose := flag.Bool("v", false, "List vertices, faces and node matrices")
	steps := flag.String("pp", "validate", "Comma separated post-process steps")
	plain := flag.Bool("plain", false, "Disable colors")
	showModel := flag.Bool("model", false, "Also print the converted model tree")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <model file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	pp, err := scene.ParsePostProcess(strings.Split(*steps, ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	imp := importer.NewContext(importer.Options{Logger: log})
	defer imp.Release()

	sc, err := imp.ImportFile(path, pp)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var opts []termenv.OutputOption
	if *plain {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	d := dump.New(os.Stdout, opts...)
	d.Verbose = *verbose
	if err := d.Dump(sc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*showModel {
		return
	}
	res, err := convert.New(convert.Options{ModelDir: filepath.Dir(path), Logger: log}).Convert(sc)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nModel")
	printModel(res.Root, 1)
	if res.Camera != nil {
		fmt.Printf("  camera %q fov %.1f°\n", res.Camera.Name, res.Camera.FieldOfView)
	}
}

func printModel(m media3d.Model3D, depth int) {
	indent := strings.Repeat("  ", depth)
	t := ""
	if tr := m.ModelTransform(); tr != nil {
		t = fmt.Sprintf(" %T", tr)
		if !media3d.Matrix(tr).ApproxEqual(mgl64.Ident4()) {
			t += fmt.Sprintf(" %v", media3d.ToMat4(media3d.Matrix(tr)).Translation())
		}
	}
	switch m := m.(type) {
	case *media3d.Model3DGroup:
		fmt.Printf("%sgroup %q%s\n", indent, m.Name, t)
		for _, c := range m.Children {
			printModel(c, depth+1)
		}
	case *media3d.GeometryModel3D:
		fmt.Printf("%sgeometry %q%s triangles %d material %T\n", indent, m.Name, t, m.Geometry.TriangleCount(), m.Material)
	default:
		fmt.Printf("%s%T %q%s\n", indent, m, m.ModelName(), t)
	}
}
