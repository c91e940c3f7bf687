package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show the merged annotations of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list [batch]",
	Short: "List merged documents",
	Long:  `Lists the persisted documents of a batch, or of every batch when none is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	rec, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", rec.DocumentID)
	cmd.Printf("  Resource:     %s\n", rec.Resource)
	cmd.Printf("  Batch:        %s\n", rec.Batch)
	cmd.Printf("  File:         %s\n", rec.Name)
	cmd.Printf("  State:        %s\n", rec.State)
	cmd.Printf("  Cancer:       %t\n", rec.IsCancer)
	cmd.Printf("  Annotations:  %d\n", rec.AnnotationCount)
	cmd.Printf("  Run:          %s\n", rec.RunID)
	cmd.Printf("  Updated:      %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))

	if rec.Document == nil {
		return nil
	}

	for i := range rec.Document.Passages {
		p := &rec.Document.Passages[i]
		if len(p.Annotations) == 0 {
			continue
		}
		section := p.Infons["type"]
		if section == "" {
			section = "passage"
		}
		cmd.Printf("\n  %s @%d\n", section, p.Offset)
		for _, a := range p.Annotations {
			cmd.Printf("    %4d  %-10s %-9s %-30q %s\n",
				a.ID, a.Span, a.Type, a.Text, formatIdentifier(a))
		}
	}
	return nil
}

// formatIdentifier renders the identifier with its symbol and cross references.
func formatIdentifier(a domain.Annotation) string {
	var b strings.Builder
	b.WriteString(a.Identifier)
	if a.Symbol != "" && a.Symbol != domain.UnknownSymbol {
		b.WriteString(" (")
		b.WriteString(a.Symbol)
		b.WriteString(")")
	}
	if a.Label != "" {
		b.WriteString(" [")
		b.WriteString(a.Label)
		b.WriteString("]")
	}
	for _, ref := range a.CrossRefs {
		b.WriteString(" -> ")
		b.WriteString(ref.Identifier)
	}
	return b.String()
}

func runList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	batch := ""
	if len(args) > 0 {
		batch = args[0]
	}

	records, err := documentService.List(commandContext(cmd), batch)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cancer := ""
		if r.IsCancer {
			cancer = "  cancer"
		}
		cmd.Printf("  %-14s %-12s %5d annotations  %s%s\n", r.DocumentID, r.State, r.AnnotationCount, r.Batch, cancer)
	}
	cmd.Printf("\nTotal: %d documents\n", len(records))
	return nil
}
