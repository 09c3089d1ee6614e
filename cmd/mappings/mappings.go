// Package mappings lets the user inspect and extend the description mapping
// file by hand.
package mappings

import (
	"fmt"
	"io"
	"text/tabwriter"

	"rbc2mm/cmd/root"
	"rbc2mm/internal/models"
	"rbc2mm/internal/store"

	"github.com/spf13/cobra"
)

var entry models.MappingEntry

// Cmd represents the mappings command
var Cmd = &cobra.Command{
	Use:   "mappings",
	Short: "List or append description mappings",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List mappings in match order",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadStore()
		if err := List(cmd.OutOrStdout(), s.Entries()); err != nil {
			root.GetLogrusAdapter().Fatalf("Error listing mappings: %v", err)
		}
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a mapping (existing mappings keep priority)",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadStore()
		if err := s.Append(entry); err != nil {
			root.GetLogrusAdapter().Fatalf("Error saving mapping: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added mapping #%d\n", s.Len())
	},
}

func init() {
	addCmd.Flags().StringVar(&entry.Description1, "desc1", "", "Description 1 pattern (* matches anything)")
	addCmd.Flags().StringVar(&entry.Description2, "desc2", "", "Description 2 pattern (blank matches anything)")
	addCmd.Flags().StringVar(&entry.Category, "category", "", "Category")
	addCmd.Flags().StringVar(&entry.Subcategory, "subcategory", "", "Subcategory")
	addCmd.Flags().StringVar(&entry.Note, "note", "", "Note")
	_ = addCmd.MarkFlagRequired("desc1")
	_ = addCmd.MarkFlagRequired("category")

	Cmd.AddCommand(listCmd, addCmd)
}

// loadStore opens the mapping file without building the whole pipeline.
func loadStore() *store.MappingStore {
	cfg := root.GetConfig()
	s, err := store.LoadMappingStore(cfg.Files.Mappings, root.GetLogrusAdapter())
	if err != nil {
		root.GetLogrusAdapter().Fatalf("Error loading mappings: %v", err)
	}
	return s
}

// List prints entries as an aligned table, numbered in match order.
func List(w io.Writer, entries []models.MappingEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDESCRIPTION 1\tDESCRIPTION 2\tCATEGORY\tSUBCATEGORY\tNOTE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, e.Description1, e.Description2, e.Category, e.Subcategory, e.Note)
	}
	return tw.Flush()
}
