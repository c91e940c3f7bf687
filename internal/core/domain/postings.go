package domain

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// PostingKind selects one of the two inverted indexes.
type PostingKind string

// Posting kinds.
const (
	// PostingIdentifier maps normalised identifiers to documents.
	PostingIdentifier PostingKind = "identifier"

	// PostingMention maps lower-cased mention text to documents.
	PostingMention PostingKind = "mention"
)

// IsValid reports whether k is a known posting kind.
func (k PostingKind) IsValid() bool {
	return k == PostingIdentifier || k == PostingMention
}

// DocSet is a compressed set of document sequence numbers.
// It wraps a 32-bit roaring bitmap.
type DocSet struct {
	rb *roaring.Bitmap
}

// NewDocSet creates a set holding seqs.
func NewDocSet(seqs ...uint32) *DocSet {
	return &DocSet{rb: roaring.BitmapOf(seqs...)}
}

// Add adds a document sequence number.
func (s *DocSet) Add(seq uint32) {
	s.rb.Add(seq)
}

// Contains reports whether seq is in the set.
func (s *DocSet) Contains(seq uint32) bool {
	return s.rb.Contains(seq)
}

// Or merges other into s.
func (s *DocSet) Or(other *DocSet) {
	if other == nil {
		return
	}
	s.rb.Or(other.rb)
}

// Cardinality returns the number of documents in the set.
func (s *DocSet) Cardinality() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set is empty.
func (s *DocSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Seqs returns the members in ascending order.
func (s *DocSet) Seqs() []uint32 {
	return s.rb.ToArray()
}

// MarshalBinary encodes the set in the portable roaring format.
func (s *DocSet) MarshalBinary() ([]byte, error) {
	s.rb.RunOptimize()
	return s.rb.ToBytes()
}

// UnmarshalDocSet decodes a set written by MarshalBinary.
func UnmarshalDocSet(data []byte) (*DocSet, error) {
	rb := roaring.New()
	if len(data) == 0 {
		return &DocSet{rb: rb}, nil
	}
	if err := rb.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode postings: %w", err)
	}
	return &DocSet{rb: rb}, nil
}

// PostingsStats summarises a postings rebuild.
type PostingsStats struct {
	// Documents is the number of documents scanned.
	Documents int

	// Identifiers is the number of distinct identifier keys.
	Identifiers int

	// Mentions is the number of distinct mention keys.
	Mentions int

	// BuiltAt is when the rebuild finished.
	BuiltAt time.Time
}
