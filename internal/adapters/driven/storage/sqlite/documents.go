package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/custodia-labs/pubminer/internal/adapters/driven/bioc"
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// resolveChunk bounds the IN list of ResolveSeqs queries.
const resolveChunk = 500

var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.DocumentWriter = (*DocumentStore)(nil)
)

// DocumentStore persists merged documents as zstd-compressed BioC JSON
// with one row per annotation.
type DocumentStore struct {
	store *Store
}

// Name identifies the writer in logs.
func (s *DocumentStore) Name() string {
	return "sqlite"
}

// Write persists the record.
func (s *DocumentStore) Write(ctx context.Context, rec *domain.DocumentRecord) error {
	return s.SaveRecord(ctx, rec)
}

// SaveRecord stores or replaces a merged document and sets rec.Seq.
// A replaced document keeps its seq.
func (s *DocumentStore) SaveRecord(ctx context.Context, rec *domain.DocumentRecord) error {
	if rec == nil || rec.DocumentID == "" {
		return domain.ErrInvalidInput
	}

	var body []byte
	if rec.Document != nil {
		raw, err := bioc.MarshalJSON(rec.Document)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
		body = encoder.EncodeAll(raw, nil)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (id, resource, batch, name, run_id, state, fingerprint,
			is_cancer, annotation_count, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resource = excluded.resource,
			batch = excluded.batch,
			name = excluded.name,
			run_id = excluded.run_id,
			state = excluded.state,
			fingerprint = excluded.fingerprint,
			is_cancer = excluded.is_cancer,
			annotation_count = excluded.annotation_count,
			body = excluded.body,
			updated_at = excluded.updated_at
		RETURNING seq
	`, rec.DocumentID, rec.Resource, rec.Batch, rec.Name, nullString(rec.RunID), string(rec.State),
		rec.Fingerprint, boolToInt(rec.IsCancer), rec.AnnotationCount, body,
		rec.UpdatedAt.UTC().Format(timeLayout)).Scan(&seq)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM annotations WHERE document_seq = ?", seq); err != nil {
		return fmt.Errorf("clearing annotations: %w", err)
	}
	if rec.Document != nil {
		if err := insertAnnotations(ctx, tx, seq, rec.Document.Annotations()); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document: %w", err)
	}
	rec.Seq = uint32(seq)
	return nil
}

func insertAnnotations(ctx context.Context, tx *sql.Tx, seq int64, anns []domain.Annotation) error {
	if len(anns) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotations (document_seq, annotation_id, start_offset, length, text,
			type, identifier, symbol, label, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing annotation insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range anns {
		if _, err := stmt.ExecContext(ctx, seq, a.ID, a.Span.Start, a.Span.Length, a.Text,
			string(a.Type), a.Identifier, a.Symbol, nullString(a.Label), nullString(a.Origin)); err != nil {
			return fmt.Errorf("inserting annotation %d: %w", a.ID, err)
		}
	}
	return nil
}

// GetRecord retrieves a record with its merged document.
func (s *DocumentStore) GetRecord(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`, body
		FROM documents WHERE id = ?
	`, documentID)

	var body []byte
	rec, err := scanRecord(row, &body)
	if err != nil {
		return nil, err
	}

	if len(body) > 0 {
		raw, err := decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing document %s: %w", documentID, err)
		}
		if rec.Document, err = bioc.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("decoding document %s: %w", documentID, err)
		}
	}
	return rec, nil
}

// GetFingerprint returns the fingerprint of a persisted document, or ""
// if the document is unknown or did not persist.
func (s *DocumentStore) GetFingerprint(ctx context.Context, documentID string) (string, error) {
	var fp string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM documents WHERE id = ? AND state = ?",
		documentID, string(domain.StatePersisted)).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying fingerprint: %w", err)
	}
	return fp, nil
}

// ListRecords returns record summaries ordered by seq. An empty batch
// lists every record.
func (s *DocumentStore) ListRecords(ctx context.Context, batch string) ([]domain.DocumentRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM documents
		WHERE ? = '' OR batch = ?
		ORDER BY seq
	`, batch, batch)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return records, nil
}

// ResolveSeqs maps seqs to document IDs in input order, skipping unknown seqs.
func (s *DocumentStore) ResolveSeqs(ctx context.Context, seqs []uint32) ([]string, error) {
	ids := make(map[uint32]string, len(seqs))
	for start := 0; start < len(seqs); start += resolveChunk {
		chunk := seqs[start:min(start+resolveChunk, len(seqs))]
		args := make([]any, len(chunk))
		for i, seq := range chunk {
			args[i] = int64(seq)
		}

		query := "SELECT seq, id FROM documents WHERE seq IN (?" + strings.Repeat(", ?", len(chunk)-1) + ")"
		if err := s.collectIDs(ctx, query, args, ids); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(seqs))
	for _, seq := range seqs {
		if id, ok := ids[seq]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *DocumentStore) collectIDs(ctx context.Context, query string, args []any, into map[uint32]string) error {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolving seqs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		var id string
		if err := rows.Scan(&seq, &id); err != nil {
			return fmt.Errorf("scanning seq: %w", err)
		}
		into[uint32(seq)] = id
	}
	return rows.Err()
}

// ListAnnotations returns a document's annotation rows in ID order.
func (s *DocumentStore) ListAnnotations(ctx context.Context, documentID string) ([]domain.Annotation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT a.annotation_id, a.start_offset, a.length, a.text, a.type,
			a.identifier, a.symbol, a.label, a.origin
		FROM annotations a
		JOIN documents d ON d.seq = a.document_seq
		WHERE d.id = ?
		ORDER BY a.annotation_id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var anns []domain.Annotation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Annotation
		var typ string
		var label, origin sql.NullString
		if err := rows.Scan(&a.ID, &a.Span.Start, &a.Span.Length, &a.Text, &typ,
			&a.Identifier, &a.Symbol, &label, &origin); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		a.Type = domain.EntityType(typ)
		a.Label = label.String
		a.Origin = origin.String
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}
	return anns, nil
}

const recordColumns = `seq, id, resource, batch, name, run_id, state, fingerprint,
		is_cancer, annotation_count, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans recordColumns, plus the body column when body is non-nil.
func scanRecord(row rowScanner, body *[]byte) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	var seq int64
	var runID, updatedAt sql.NullString
	var state string
	var isCancer int

	dest := []any{&seq, &rec.DocumentID, &rec.Resource, &rec.Batch, &rec.Name, &runID, &state,
		&rec.Fingerprint, &isCancer, &rec.AnnotationCount, &updatedAt}
	if body != nil {
		dest = append(dest, body)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	rec.Seq = uint32(seq)
	rec.RunID = runID.String
	rec.State = domain.DocumentState(state)
	rec.IsCancer = isCancer == 1
	rec.UpdatedAt = parseNullableTime(updatedAt)
	return &rec, nil
}
