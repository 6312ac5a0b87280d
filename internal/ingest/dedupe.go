package ingest

import (
	"hash/fnv"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
)

// Deduper drops duplicate chunks in two tiers. Exact duplicates share a
// content fingerprint (hash of the folded text) and are dropped regardless of
// origin. Near duplicates are detected by word-shingle Jaccard similarity
// against accepted chunks from other documents only: overlap windows within
// one document are intentional and never compared. Processing is sequential
// and first-seen wins, so the same input in the same order always keeps the
// same chunks.
type Deduper struct {
	threshold   float64
	shingleSize int

	fingerprints map[string]struct{}
	accepted     []acceptedChunk
	// Inverted shingle index: shingle hash -> positions in accepted.
	// Candidate lookup touches only chunks sharing at least one shingle,
	// keeping dedupe near-linear on mostly distinct corpora.
	buckets map[uint64][]int
}

type acceptedChunk struct {
	sourceID string
	shingles map[uint64]struct{}
}

// DedupeStats reports what a dedupe pass dropped.
type DedupeStats struct {
	Exact int
	Near  int
}

// NewDeduper creates a deduper with the given Jaccard threshold and word
// shingle size.
func NewDeduper(threshold float64, shingleSize int) *Deduper {
	if shingleSize < 1 {
		shingleSize = 1
	}
	return &Deduper{
		threshold:    threshold,
		shingleSize:  shingleSize,
		fingerprints: make(map[string]struct{}),
		buckets:      make(map[uint64][]int),
	}
}

// Seed registers already-accepted chunks without the ability to drop them.
// Used when re-ingesting into an existing corpus: chunks persisted by earlier
// runs keep priority over new arrivals.
func (d *Deduper) Seed(chunks []models.Chunk) {
	for i := range chunks {
		d.accept(&chunks[i])
	}
}

// Dedupe filters chunks in order, returning the survivors and drop counts.
func (d *Deduper) Dedupe(chunks []models.Chunk) ([]models.Chunk, DedupeStats) {
	var stats DedupeStats
	kept := make([]models.Chunk, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if c.Fingerprint == "" {
			c.Fingerprint = Fingerprint(c.Text)
		}
		if _, dup := d.fingerprints[c.Fingerprint]; dup {
			stats.Exact++
			continue
		}
		if d.nearDuplicate(c) {
			stats.Near++
			continue
		}
		d.accept(c)
		kept = append(kept, *c)
	}
	return kept, stats
}

func (d *Deduper) accept(c *models.Chunk) {
	if c.Fingerprint == "" {
		c.Fingerprint = Fingerprint(c.Text)
	}
	d.fingerprints[c.Fingerprint] = struct{}{}
	shingles := shingleSet(c.Text, d.shingleSize)
	pos := len(d.accepted)
	d.accepted = append(d.accepted, acceptedChunk{sourceID: c.SourceID, shingles: shingles})
	for s := range shingles {
		d.buckets[s] = append(d.buckets[s], pos)
	}
}

func (d *Deduper) nearDuplicate(c *models.Chunk) bool {
	shingles := shingleSet(c.Text, d.shingleSize)
	if len(shingles) == 0 {
		return false
	}
	shared := make(map[int]int)
	for s := range shingles {
		for _, pos := range d.buckets[s] {
			shared[pos]++
		}
	}
	for pos, common := range shared {
		prev := d.accepted[pos]
		if prev.sourceID == c.SourceID {
			continue
		}
		union := len(shingles) + len(prev.shingles) - common
		if union <= 0 {
			continue
		}
		if float64(common)/float64(union) > d.threshold {
			return true
		}
	}
	return false
}

// shingleSet returns the hashed word n-grams of the folded text. Texts
// shorter than the shingle size contribute a single shingle covering all
// their words, so tiny chunks still participate in near-duplicate checks.
func shingleSet(text string, size int) map[uint64]struct{} {
	words := strings.Fields(utils.FoldText(text))
	if len(words) == 0 {
		return nil
	}
	set := make(map[uint64]struct{})
	if len(words) < size {
		set[hashShingle(words)] = struct{}{}
		return set
	}
	for i := 0; i+size <= len(words); i++ {
		set[hashShingle(words[i:i+size])] = struct{}{}
	}
	return set
}

func hashShingle(words []string) uint64 {
	h := fnv.New64a()
	for i, w := range words {
		if i > 0 {
			h.Write([]byte{' '})
		}
		h.Write([]byte(w))
	}
	return h.Sum64()
}
