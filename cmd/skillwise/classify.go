package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		tags    string
		asJSON  bool
		storeAt string
	)

	cmd := &cobra.Command{
		Use:   "classify <roadmap.txt|->",
		Short: "Show how a roadmap is parsed into lines, tags and sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			p := roadmap.Progress{}
			if storeAt != "" {
				flat, err := loadStore(storeAt)
				if err != nil {
					return err
				}
				p = roadmap.DecodeProgress(flat, roadmap.Group(roadmap.Classify(text)))
			}
			v := roadmap.Render(text, roadmap.ParseTagQuery(tags), p)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			printView(out, v)
			return nil
		},
	}

	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags every shown item must carry")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed view as JSON")
	cmd.Flags().StringVar(&storeAt, "store", "", "Progress file used to show completed items")
	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read roadmap: %w", err)
	}
	return string(data), nil
}

func printView(w io.Writer, v roadmap.View) {
	label := "Tags"
	if v.Tags.Fallback {
		label = "Tags (suggested)"
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(v.Tags.Tags, ", "))
	fmt.Fprintf(w, "Progress: %d/%d\n", v.Completed, v.Total)

	for _, s := range v.Sections {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "\n[%d] %s\n", s.HeadingIndex, title)
		for _, item := range s.Items {
			switch item.Kind {
			case roadmap.KindBullet:
				box := "[ ]"
				if item.Done {
					box = "[x]"
				}
				indent := "  "
				if item.Nested {
					indent = "    "
				}
				fmt.Fprintf(w, "%s%s %s", indent, box, item.Text)
				if len(item.Tags) > 0 {
					fmt.Fprintf(w, " (%s)", strings.Join(item.Tags, ", "))
				}
				fmt.Fprintln(w)
			default:
				fmt.Fprintf(w, "  %-10s %s\n", item.Kind, item.Text)
			}
		}
	}
}
