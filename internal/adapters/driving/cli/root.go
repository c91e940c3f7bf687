// Package cli provides the cobra commands of the pubminer binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Persistent flags.
var (
	configPath string
	verbose    bool
)

// Services configured by Configure or the bootstrap function.
var (
	batchCoordinator driving.BatchCoordinator
	documentService  driving.DocumentService
	postingsService  driving.PostingsService
	scheduler        driving.Scheduler
	schedulerConfig  domain.SchedulerConfig
)

// Watcher runs batches as they appear.
type Watcher interface {
	Run(ctx context.Context) error
}

// WatchOptions configure the watcher built by a WatcherFactory.
type WatchOptions struct {
	RunExisting bool
	Workers     int
	Force       bool
	OnReport    func(*domain.BatchReport)
}

// WatcherFactory builds a watcher for the watch and serve commands.
type WatcherFactory func(opts WatchOptions) Watcher

// Services holds the driving ports the commands call.
type Services struct {
	Coordinator     driving.BatchCoordinator
	Documents       driving.DocumentService
	Postings        driving.PostingsService
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
	Watcher         WatcherFactory
}

// BootstrapFunc builds the services from the config file at path; an empty
// path means the default location. The returned function releases them.
type BootstrapFunc func(path string, verbose bool) (*Services, func() error, error)

var (
	bootstrap      BootstrapFunc
	watcherFactory WatcherFactory
	closeServices  func() error
)

var rootCmd = &cobra.Command{
	Use:   "pubminer",
	Short: "Merge biomedical named-entity recognizer outputs",
	Long: `pubminer merges the outputs of the gene, mutation, disease and chemical
recognizers into one consistent annotation set per document, fills gaps
from reference vocabularies and persists the result.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareServices,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.pubminer/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Configure sets the services directly, bypassing bootstrap.
func Configure(s *Services) {
	if s == nil {
		s = &Services{}
	}
	batchCoordinator = s.Coordinator
	documentService = s.Documents
	postingsService = s.Postings
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	watcherFactory = s.Watcher
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("close services: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func prepareServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" || closeServices != nil {
		return nil
	}

	services, closeFn, err := bootstrap(configPath, verbose)
	if err != nil {
		return err
	}
	Configure(services)
	closeServices = closeFn
	return nil
}

// commandContext returns the command context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
