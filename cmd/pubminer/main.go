// Command pubminer merges biomedical recognizer outputs into annotated documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/pubminer/internal/adapters/driven/bioc"
	"github.com/custodia-labs/pubminer/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pubminer/internal/adapters/driven/recognizers/filesystem"
	"github.com/custodia-labs/pubminer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pubminer/internal/adapters/driven/vocabulary"
	"github.com/custodia-labs/pubminer/internal/adapters/driving/cli"
	"github.com/custodia-labs/pubminer/internal/adapters/driving/watch"
	"github.com/custodia-labs/pubminer/internal/config"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
	"github.com/custodia-labs/pubminer/internal/core/services"
	"github.com/custodia-labs/pubminer/internal/logger"
	"github.com/custodia-labs/pubminer/internal/normalisers/bioconcept"
	"github.com/custodia-labs/pubminer/internal/normalisers/variant"
	"github.com/custodia-labs/pubminer/internal/postprocessors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters and services from the config file at path.
func bootstrap(path string, verbose bool) (*cli.Services, func() error, error) {
	store, err := file.NewConfigStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}

	settings, err := config.Load(store)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", store.Path(), err)
	}
	logger.SetVerbose(verbose || settings.Verbose)
	logger.Debug("config: %s", store.Path())
	for _, k := range config.UnknownKeys(store) {
		logger.Warn("config: unknown key %s", k)
	}

	if err := settings.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	manifest, err := config.LoadManifest(settings.ManifestPath)
	if err != nil {
		return nil, nil, err
	}

	source := filesystem.New(filesystem.Config{
		Root:        settings.NERRoot,
		Resource:    settings.Resource,
		Base:        settings.BaseRecognizer,
		ReadySuffix: settings.ReadySuffix,
		Layout:      manifest,
	})

	loader := vocabulary.NewLoader(vocabulary.Files{
		Gene:      settings.Vocabulary.Gene,
		Cancer:    settings.Vocabulary.Cancer,
		Chemical:  settings.Vocabulary.Chemical,
		Evidence:  settings.Vocabulary.Evidence,
		DOID:      settings.Vocabulary.DOID,
		Stopwords: settings.Vocabulary.Stopwords,
	})

	db, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	docs := db.DocumentStore()

	normalisers := services.NewNormaliserRegistry(bioconcept.New(), variant.New())

	stages := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(stages)
	factory := &postprocessors.Factory{
		Registry: stages,
		Stages:   settings.Stages(),
		Configs:  settings.StageConfigs(),
	}

	// The store is written last so a persisted row implies published files.
	writers := []driven.DocumentWriter{
		bioc.NewXMLFileWriter(settings.ResultRoot),
		bioc.NewJSONFileWriter(settings.JSONRoot()),
		docs,
	}

	processor := services.NewDocumentProcessor(source, normalisers, docs, writers, settings.Precedence)
	postings := services.NewPostingsService(docs, db.PostingsStore())
	coordinator := services.NewBatchCoordinator(
		services.BatchConfig{Resource: settings.Resource, Workers: settings.Workers},
		source, loader, factory, processor, db.RunStore(), postings,
	)

	svc := &cli.Services{
		Coordinator:     coordinator,
		Documents:       services.NewDocumentService(docs, db.RunStore()),
		Postings:        postings,
		Scheduler:       services.NewScheduler(settings.SchedulerConfig(), db.SchedulerStore(), coordinator),
		SchedulerConfig: settings.SchedulerConfig(),
		Watcher: func(opts cli.WatchOptions) cli.Watcher {
			return watch.New(watch.Config{
				Root:        source.WatchRoot(),
				IsBatch:     source.IsBatchDir,
				RunExisting: opts.RunExisting,
				Options:     driving.RunOptions{Workers: opts.Workers, Force: opts.Force},
				OnReport:    opts.OnReport,
			}, coordinator)
		},
	}

	return svc, db.Close, nil
}
