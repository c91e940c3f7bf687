package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// Ensure PostingsService implements the interface.
var _ driving.PostingsService = (*PostingsService)(nil)

// postedTypes are the entity types that contribute postings.
var postedTypes = map[domain.EntityType]bool{
	domain.EntityGene:     true,
	domain.EntityDisease:  true,
	domain.EntityChemical: true,
	domain.EntityMutation: true,
}

// PostingsService derives identifier and mention postings from merged
// documents.
type PostingsService struct {
	docs     driven.DocumentStore
	postings driven.PostingsStore
}

// NewPostingsService creates a postings service.
func NewPostingsService(docs driven.DocumentStore, postings driven.PostingsStore) *PostingsService {
	return &PostingsService{
		docs:     docs,
		postings: postings,
	}
}

// Rebuild scans the persisted records of a batch and ORs their postings
// into the store.
func (s *PostingsService) Rebuild(ctx context.Context, batch string) (*domain.PostingsStats, error) {
	records, err := s.docs.ListRecords(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	identifiers := make(map[string]*domain.DocSet)
	mentions := make(map[string]*domain.DocSet)
	add := func(index map[string]*domain.DocSet, key string, seq uint32) {
		set, ok := index[key]
		if !ok {
			set = domain.NewDocSet()
			index[key] = set
		}
		set.Add(seq)
	}

	var documents int
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if records[i].State != domain.StatePersisted {
			continue
		}
		rec, err := s.docs.GetRecord(ctx, records[i].DocumentID)
		if err != nil {
			return nil, fmt.Errorf("get record %s: %w", records[i].DocumentID, err)
		}
		if rec.Document == nil {
			logger.Debug("Record %s has no document, skipping postings", rec.DocumentID)
			continue
		}
		documents++
		ids, texts := CollectPostings(rec.Document)
		for _, id := range ids {
			add(identifiers, id, rec.Seq)
		}
		for _, text := range texts {
			add(mentions, text, rec.Seq)
		}
	}

	if err := s.postings.MergePostings(ctx, domain.PostingIdentifier, identifiers); err != nil {
		return nil, fmt.Errorf("merge identifier postings: %w", err)
	}
	if err := s.postings.MergePostings(ctx, domain.PostingMention, mentions); err != nil {
		return nil, fmt.Errorf("merge mention postings: %w", err)
	}

	stats := &domain.PostingsStats{
		Documents:   documents,
		Identifiers: len(identifiers),
		Mentions:    len(mentions),
		BuiltAt:     time.Now(),
	}
	logger.Info("Postings rebuilt: %d documents, %d identifiers, %d mentions",
		stats.Documents, stats.Identifiers, stats.Mentions)
	return stats, nil
}

// Lookup returns the IDs of documents posted under key.
func (s *PostingsService) Lookup(ctx context.Context, kind domain.PostingKind, key string) ([]string, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: posting kind %q", domain.ErrInvalidInput, kind)
	}
	key = strings.TrimSpace(key)
	if kind == domain.PostingMention {
		key = strings.ToLower(key)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}

	set, err := s.postings.GetPostings(ctx, kind, key)
	if err != nil {
		return nil, fmt.Errorf("get postings: %w", err)
	}
	if set.IsEmpty() {
		return nil, nil
	}
	return s.docs.ResolveSeqs(ctx, set.Seqs())
}

// CollectPostings returns the distinct identifier and mention keys of a
// merged document. Reference, supplementary, table and back-matter passages
// are ignored. Identifiers are only posted when they resolved to a symbol.
func CollectPostings(doc *domain.Document) (identifiers, mentions []string) {
	seenIDs := make(map[string]bool)
	seenMentions := make(map[string]bool)
	for i := range doc.Passages {
		p := &doc.Passages[i]
		if p.IsAuxiliary() {
			continue
		}
		for _, a := range p.Annotations {
			if !postedTypes[a.Type] {
				continue
			}
			if a.Symbol != domain.UnknownSymbol && a.Symbol != "" {
				for _, id := range a.IdentifierParts() {
					if !seenIDs[id] {
						seenIDs[id] = true
						identifiers = append(identifiers, id)
					}
				}
			}
			if m := strings.ToLower(a.Text); m != "" && !seenMentions[m] {
				seenMentions[m] = true
				mentions = append(mentions, m)
			}
		}
	}
	return identifiers, mentions
}
