package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// DocumentProcessor runs one document through the merge state machine:
// normalise every recognizer output, run the stage pipeline, hand the
// result to the writers.
type DocumentProcessor struct {
	source     driven.RecognizerSource
	registry   driven.NormaliserRegistry
	store      driven.DocumentStore
	writers    []driven.DocumentWriter
	precedence []domain.RecognizerKind
}

// NewDocumentProcessor creates a processor.
// The store is used for fingerprint lookups and may be nil, which disables
// skipping. Outputs are loaded in precedence order; nil means the default.
func NewDocumentProcessor(
	source driven.RecognizerSource,
	registry driven.NormaliserRegistry,
	store driven.DocumentStore,
	writers []driven.DocumentWriter,
	precedence []domain.RecognizerKind,
) *DocumentProcessor {
	if len(precedence) == 0 {
		precedence = domain.AllRecognizerKinds()
	}
	return &DocumentProcessor{
		source:     source,
		registry:   registry,
		store:      store,
		writers:    writers,
		precedence: precedence,
	}
}

// runContext is the per-batch state shared read-only by every document.
type runContext struct {
	runID     string
	reference *domain.ReferenceData
	pipeline  driven.StagePipeline
	signature string
	force     bool
}

// Process merges one document. Any failure is returned as a
// *domain.StageError naming the state the document failed in.
// Documents whose inputs are unchanged come back as StateSkipped.
//
//nolint:gocyclo // State machine with sequential steps
func (p *DocumentProcessor) Process(ctx context.Context, ref domain.DocumentRef, run *runContext) (*domain.DocumentRecord, error) {
	docID := ref.Name
	fail := func(state domain.DocumentState, err error) (*domain.DocumentRecord, error) {
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			return nil, stageErr
		}
		return nil, &domain.StageError{DocumentID: docID, Stage: state, Err: err}
	}

	// 1. BASE DOCUMENT
	base, err := p.source.Base(ctx, ref)
	if err != nil {
		return fail(domain.StateNormalizing, fmt.Errorf("base document: %w", err))
	}
	if base == nil || base.Document == nil || len(base.Document.Passages) == 0 {
		return fail(domain.StateNormalizing, domain.ErrUnresolvableDocument)
	}
	doc := base.Document
	if doc.ID == "" {
		return fail(domain.StateNormalizing, fmt.Errorf("%w: missing document id", domain.ErrUnresolvableDocument))
	}
	docID = doc.ID

	// 2. RECOGNIZER OUTPUTS
	outputs := make([]*domain.RecognizerOutput, 0, len(p.precedence))
	for _, kind := range p.precedence {
		out, err := p.source.Load(ctx, ref, kind)
		switch {
		case errors.Is(err, domain.ErrMalformedOutput):
			logger.Warn("Document %s: %s output ignored: %v", docID, kind, err)
			out = nil
		case err != nil:
			return fail(domain.StateNormalizing, fmt.Errorf("load %s output: %w", kind, err))
		}
		outputs = append(outputs, out)
	}

	// 3. FINGERPRINT
	fingerprint := Fingerprint(base.Digest, outputs, run.reference, run.signature)
	if p.store != nil && !run.force {
		stored, err := p.store.GetFingerprint(ctx, docID)
		if err != nil {
			return fail(domain.StateNormalizing, fmt.Errorf("get fingerprint: %w", err))
		}
		if stored == fingerprint {
			logger.Debug("Document %s unchanged, skipping", docID)
			return &domain.DocumentRecord{
				DocumentID:  docID,
				Resource:    ref.Resource,
				Batch:       ref.Batch,
				Name:        ref.Name,
				RunID:       run.runID,
				State:       domain.StateSkipped,
				Fingerprint: fingerprint,
				UpdatedAt:   time.Now(),
			}, nil
		}
	}

	// 4. NORMALISE
	text := domain.NewTextIndex(doc)
	var anns []domain.Annotation
	for _, out := range outputs {
		if out.Len() == 0 {
			continue
		}
		normalised, err := p.registry.Normalise(ctx, &driven.NormaliseRequest{
			Output:    out,
			Text:      text,
			Reference: run.reference,
		})
		if err != nil {
			return fail(domain.StateNormalizing, fmt.Errorf("normalise %s: %w", out.Kind, err))
		}
		anns = append(anns, normalised...)
	}

	// 5. MERGE, GAP-FILL, PARTITION
	anns, err = run.pipeline.Process(ctx, doc, anns)
	if err != nil {
		return fail(domain.StateMerging, err)
	}

	// 6. PERSIST
	rec := &domain.DocumentRecord{
		DocumentID:      docID,
		Resource:        ref.Resource,
		Batch:           ref.Batch,
		Name:            ref.Name,
		RunID:           run.runID,
		State:           domain.StatePersisted,
		Fingerprint:     fingerprint,
		IsCancer:        doc.HasCancerAnnotation(),
		AnnotationCount: len(anns),
		UpdatedAt:       time.Now(),
		Document:        doc,
	}
	for _, w := range p.writers {
		if err := w.Write(ctx, rec); err != nil {
			return fail(domain.StatePersisting, fmt.Errorf("writer %s: %w", w.Name(), err))
		}
	}

	return rec, nil
}

// Fingerprint hashes everything a merged document is a pure function of:
// the base document, each recognizer output in load order, the
// vocabulary snapshot and the pipeline signature. Absent outputs
// contribute a placeholder.
func Fingerprint(baseDigest string, outputs []*domain.RecognizerOutput, ref *domain.ReferenceData, pipeline string) string {
	h := blake3.New()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	write(baseDigest)
	for _, out := range outputs {
		if out == nil {
			write("-")
			continue
		}
		write(string(out.Kind) + ":" + out.Digest)
	}
	if ref != nil {
		write(ref.Digest())
	} else {
		write("-")
	}
	write(pipeline)
	return hex.EncodeToString(h.Sum(nil))
}
