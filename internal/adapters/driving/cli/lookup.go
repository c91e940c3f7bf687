package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [identifier|mention] [value]",
	Short: "Find documents by identifier or mention",
	Long: `Prints the IDs of the documents posted under an identifier
(for example MESH:D009369) or a lower-cased mention text.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(domain.PostingIdentifier), string(domain.PostingMention)},
	RunE:      runLookup,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [batch]",
	Short: "Rebuild identifier and mention postings",
	Long: `Scans persisted documents and merges their identifiers and mentions
into the postings. Without a batch every document is scanned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if postingsService == nil {
		return errors.New("postings service not configured")
	}

	kind := domain.PostingKind(args[0])
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown posting kind %q (want identifier or mention)", domain.ErrInvalidInput, args[0])
	}

	ids, err := postingsService.Lookup(commandContext(cmd), kind, args[1])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if len(ids) == 0 {
		cmd.Printf("No documents found for %s: %s\n", kind, args[1])
		return nil
	}

	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	if postingsService == nil {
		return errors.New("postings service not configured")
	}

	batch := ""
	if len(args) > 0 {
		batch = args[0]
	}

	stats, err := postingsService.Rebuild(commandContext(cmd), batch)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Indexed %d documents: %d identifiers, %d mentions (%s)\n",
		stats.Documents, stats.Identifiers, stats.Mentions, stats.BuiltAt.Format(time.RFC3339))
	return nil
}
