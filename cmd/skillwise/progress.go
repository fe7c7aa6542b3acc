package main

import (
	"fmt"

	"github.com/fadilmartias/skillwise/internal/repository"
	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	var (
		storeAt     string
		roadmapPath string
		section     string
		item        string
		done        bool
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Check or uncheck a roadmap item in a progress file",
		Long: "Toggle one roadmap item in a JSON progress file. Items are keyed by section title and the raw bullet line, " +
			"e.g. --section \"Month 1\" --item \"* Learn SQL\".",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := roadmap.ProgressKey{Section: section, Item: item}

			if roadmapPath != "" {
				text, err := readInput(cmd, roadmapPath)
				if err != nil {
					return err
				}
				if !roadmap.HasItem(roadmap.Group(roadmap.Classify(text)), key) {
					return fmt.Errorf("item %q not found in section %q", item, section)
				}
			}

			store := repository.NewProgressFileStore(storeAt)
			flat, err := store.Load()
			if err != nil {
				return err
			}
			flat[key.Composite()] = done
			if err := store.Save(flat); err != nil {
				return err
			}

			completed := 0
			for _, v := range flat {
				if v {
					completed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: done=%t (%d of %d items complete)\n", key.Composite(), done, completed, len(flat))
			return nil
		},
	}

	cmd.Flags().StringVar(&storeAt, "store", "", "Progress JSON file (required)")
	cmd.Flags().StringVar(&roadmapPath, "roadmap", "", "Roadmap text used to check the item exists")
	cmd.Flags().StringVar(&section, "section", "", "Section title the item belongs to")
	cmd.Flags().StringVar(&item, "item", "", "Raw bullet line, including the leading \"* \" (required)")
	cmd.Flags().BoolVar(&done, "done", true, "Mark the item complete; --done=false unchecks it")
	_ = cmd.MarkFlagRequired("store")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func loadStore(path string) (map[string]bool, error) {
	return repository.NewProgressFileStore(path).Load()
}
