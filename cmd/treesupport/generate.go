package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chazu/lignin/treesupport/pkg/checkpoint"
	"github.com/chazu/lignin/treesupport/pkg/contact"
	"github.com/chazu/lignin/treesupport/pkg/geom2d"
	"github.com/chazu/lignin/treesupport/pkg/modelio"
	"github.com/chazu/lignin/treesupport/pkg/support"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		modelPath  string
		outPath    string
		numLayers  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate tree supports for a 3MF model and write a checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.New()
			log.Printf("treesupport: run %s starting", runID)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			mesh, err := modelio.LoadMesh3MF(modelPath)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}

			outlines := modelio.Slice(mesh, cfg.LayerHeight, numLayers)
			overhangs := modelio.Overhangs(outlines, cfg.LayerHeight, cfg.SupportAngle)

			layerOutline := func(layer int) geom2d.PolygonSet {
				if layer < 0 || layer >= len(outlines) {
					return geom2d.PolygonSet{}
				}
				return outlines[layer]
			}
			layerOverhang := func(layer int) geom2d.PolygonSet {
				if layer < 0 || layer >= len(overhangs) {
					return geom2d.PolygonSet{}
				}
				return overhangs[layer]
			}

			meshes := []support.Mesh{{
				Overhangs: contact.Overhangs(layerOverhang),
				AABB:      mesh.AABB,
			}}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			progress := newProgress(runID.String())

			result, err := support.Generate(ctx, cfg, numLayers, layerOutline, meshes, progress)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer out.Close()

			if err := checkpoint.Save(out, result); err != nil {
				return fmt.Errorf("save checkpoint: %w", err)
			}

			log.Printf("treesupport: run %s wrote %d layers to %s", runID, len(result.Layers), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "treesupport.toml", "path to a TOML config file")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "path to a 3MF model file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "checkpoint.msgpack", "path to write the result checkpoint")
	cmd.Flags().IntVarP(&numLayers, "layers", "l", 0, "number of printed layers to slice the model into")
	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("layers")

	return cmd
}
