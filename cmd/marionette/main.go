// marionette - Skinned model viewer for the terminal.
// Load glTF/GLB rigs, play their first animation and inspect the skeleton.
//
// Commands:
//
//	view      - Interactive terminal viewer
//	inspect   - Print the node tree, reduced skeleton and clip
//	snapshot  - Render one frame to a WebP or PNG file
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/marionette/internal/config"
	"github.com/taigrr/marionette/pkg/models"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// app carries the settings every command shares.
type app struct {
	configPath string
	flags      config.Flags

	cfg config.Config
	log *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "marionette",
		Short: "View, inspect and snapshot skinned, animated models",
		Long: "marionette loads glTF and GLB rigs, reduces their node tree to a skeleton\n" +
			"and plays the first animation, in the terminal or to an image.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to a JSON config file")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.Float64Var(&a.flags.Rate, "rate", 0, "Playback rate in ticks per second (0 uses the clip's)")
	pf.IntVar(&a.flags.MaxBones, "max-bones", 0, "Bone limit including the root (negative disables)")

	root.AddCommand(
		newViewCmd(a),
		newInspectCmd(a),
		newSnapshotCmd(a),
	)
	return root
}

// setup loads the config file, applies flags and creates the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.Resolve(a.flags)

	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "marionette",
		Level:  lvl,
	})
	return nil
}

// loadModel imports and rigs the model at path.
func (a *app) loadModel(path string) (*models.Model, error) {
	opts := append(a.cfg.LoaderOptions(), models.WithLogger(a.log))
	m, err := models.NewLoader(opts...).LoadFile(path)
	if err != nil {
		return nil, err
	}
	a.log.Info("loaded", "model", m.Name, "vertices", m.VertexCount(), "triangles", m.TriangleCount(), "bones", m.Skeleton.Len())
	return m, nil
}
