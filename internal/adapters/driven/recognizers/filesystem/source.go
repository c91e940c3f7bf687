// Package filesystem reads recognizer outputs from the NER directory tree:
// <root>/<tool>_OUTPUT/<resource>/<batch>/<file>.
package filesystem

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/custodia-labs/pubminer/internal/adapters/driven/bioc"
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.RecognizerSource = (*Source)(nil)

// Layout names the directory and file each recognizer writes.
type Layout interface {
	OutputDir(kind domain.RecognizerKind) string
	OutputFile(kind domain.RecognizerKind, name string) string
}

// Config configures a Source.
type Config struct {
	// Root is the NER working directory.
	Root string

	// Resource is the collection subdirectory (PUBMED, PMC).
	Resource string

	// Base is the recognizer whose output supplies passages and text.
	Base domain.RecognizerKind

	// ReadySuffix, when set, restricts batches to directories ending in it.
	ReadySuffix string

	Layout Layout
}

// Source is a driven.RecognizerSource over the local filesystem.
type Source struct {
	cfg Config
}

// New creates a filesystem recognizer source.
func New(cfg Config) *Source {
	if cfg.Base == "" {
		cfg.Base = domain.RecognizerDisease
	}
	return &Source{cfg: cfg}
}

// WatchRoot returns the base recognizer's resource directory.
func (s *Source) WatchRoot() string {
	return filepath.Join(s.cfg.Root, s.cfg.Layout.OutputDir(s.cfg.Base), s.cfg.Resource)
}

// IsBatchDir reports whether a directory name is a ready batch.
func (s *Source) IsBatchDir(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return s.cfg.ReadySuffix == "" || strings.HasSuffix(name, s.cfg.ReadySuffix)
}

// ListBatches returns the ready batch directories, sorted.
// A missing resource directory means no batches yet.
func (s *Source) ListBatches(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.WatchRoot())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list batches: %w", err)
	}

	var batches []string
	for _, e := range entries {
		if e.IsDir() && s.IsBatchDir(e.Name()) {
			batches = append(batches, e.Name())
		}
	}
	sort.Strings(batches)
	return batches, nil
}

// ListDocuments returns one ref per base output file in the batch.
func (s *Source) ListDocuments(ctx context.Context, batch string) ([]domain.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName(batch); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.WatchRoot(), batch)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: batch %s", domain.ErrNotFound, batch)
		}
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var refs []domain.DocumentRef
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		refs = append(refs, domain.DocumentRef{
			Resource: s.cfg.Resource,
			Batch:    batch,
			Name:     e.Name(),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Base reads the base recognizer's output as the document skeleton.
func (s *Source) Base(ctx context.Context, ref domain.DocumentRef) (*driven.BaseDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.read(ref, s.cfg.Base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s has no %s output", domain.ErrUnresolvableDocument, ref, s.cfg.Base)
		}
		return nil, err
	}

	parsed, err := bioc.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnresolvableDocument, ref, err)
	}
	if len(parsed.Document.Passages) == 0 {
		return nil, fmt.Errorf("%w: %s has no passages", domain.ErrUnresolvableDocument, ref)
	}

	return &driven.BaseDocument{Document: parsed.Document, Digest: digest(data)}, nil
}

// Load reads one recognizer's output. A missing file is not an error.
func (s *Source) Load(ctx context.Context, ref domain.DocumentRef, kind domain.RecognizerKind) (*domain.RecognizerOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.read(ref, kind)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	parsed, err := bioc.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s output of %s: %w", kind, ref, err)
	}

	return &domain.RecognizerOutput{
		DocumentID:  parsed.Document.ID,
		Kind:        kind,
		Annotations: parsed.Annotations,
		Digest:      digest(data),
	}, nil
}

// Path returns where a recognizer's output for ref is expected.
func (s *Source) Path(ref domain.DocumentRef, kind domain.RecognizerKind) string {
	resource := ref.Resource
	if resource == "" {
		resource = s.cfg.Resource
	}
	return filepath.Join(s.cfg.Root, s.cfg.Layout.OutputDir(kind), resource, ref.Batch,
		s.cfg.Layout.OutputFile(kind, ref.Name))
}

func (s *Source) read(ref domain.DocumentRef, kind domain.RecognizerKind) ([]byte, error) {
	if err := checkName(ref.Batch); err != nil {
		return nil, err
	}
	if err := checkName(ref.Name); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path(ref, kind))
}

// checkName rejects names that would escape their directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: name %q", domain.ErrInvalidInput, name)
	}
	return nil
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
