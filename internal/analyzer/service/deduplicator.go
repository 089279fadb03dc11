package service

import (
	"golang-competitive-intel/internal/entity"
)

// PersistedSignal is the read-only view of an already persisted signal
// that candidates are deduplicated against.
type PersistedSignal struct {
	ID         uint
	Title      string
	SourceURL  string
	ContentLen int
}

// MergeInstruction records that a candidate duplicates an existing
// signal. The trend engine still counts the candidate as evidence; it
// just never becomes a new row. ExistingID is zero when the duplicate
// collapsed onto another candidate from the same run.
type MergeInstruction struct {
	Candidate     entity.RawSignal
	ExistingID    uint
	ExistingTitle string
	Similarity    float64
}

// DedupResult partitions a candidate batch into genuinely new signals
// and merge instructions.
type DedupResult struct {
	New     []entity.RawSignal
	Merges  []MergeInstruction
	Skipped int
}

// Deduplicator collapses near-duplicate signals within a run and against
// the persisted lookback horizon. Dedupe is a pure function: identical
// inputs always produce the identical partition.
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator creates a Deduplicator with the given title-overlap threshold.
func NewDeduplicator(threshold float64) (*Deduplicator, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, &ConfigurationError{Reason: "dedup threshold must be in (0,1]"}
	}
	return &Deduplicator{threshold: threshold}, nil
}

type horizonEntry struct {
	id     uint
	title  string
	tokens map[string]struct{}
}

// Dedupe partitions candidates against the horizon and against each
// other. Two signals are duplicates when their normalized titles overlap
// above the threshold or their source URLs are identical. Ties within a
// run are broken by preferring the candidate with the longer content.
func (d *Deduplicator) Dedupe(candidates []entity.RawSignal, horizon []PersistedSignal) DedupResult {
	result := DedupResult{}

	horizonByURL := make(map[string]*horizonEntry, len(horizon))
	horizonEntries := make([]horizonEntry, 0, len(horizon))
	for _, p := range horizon {
		entry := horizonEntry{id: p.ID, title: p.Title, tokens: normalizeTokens(p.Title)}
		horizonEntries = append(horizonEntries, entry)
		if p.SourceURL != "" {
			horizonByURL[p.SourceURL] = &horizonEntries[len(horizonEntries)-1]
		}
	}

	type acceptedEntry struct {
		signal entity.RawSignal
		tokens map[string]struct{}
	}
	var accepted []acceptedEntry

	for _, candidate := range candidates {
		if candidate.Title == "" {
			result.Skipped++
			continue
		}
		tokens := normalizeTokens(candidate.Title)

		// Against the persisted horizon first.
		if matched, similarity := d.matchHorizon(candidate, tokens, horizonByURL, horizonEntries); matched != nil {
			result.Merges = append(result.Merges, MergeInstruction{
				Candidate:     candidate,
				ExistingID:    matched.id,
				ExistingTitle: matched.title,
				Similarity:    similarity,
			})
			continue
		}

		// Then against candidates already accepted from this run.
		dupIdx := -1
		dupSimilarity := 0.0
		for i := range accepted {
			if candidate.SourceURL != "" && candidate.SourceURL == accepted[i].signal.SourceURL {
				dupIdx, dupSimilarity = i, 1.0
				break
			}
			if sim := tokenOverlap(tokens, accepted[i].tokens); sim > d.threshold {
				dupIdx, dupSimilarity = i, sim
				break
			}
		}
		if dupIdx < 0 {
			accepted = append(accepted, acceptedEntry{signal: candidate, tokens: tokens})
			continue
		}

		kept := accepted[dupIdx].signal
		if len(candidate.Content) > len(kept.Content) {
			// The fuller candidate wins; the previous one becomes the merge.
			accepted[dupIdx] = acceptedEntry{signal: candidate, tokens: tokens}
			result.Merges = append(result.Merges, MergeInstruction{
				Candidate:     kept,
				ExistingTitle: candidate.Title,
				Similarity:    dupSimilarity,
			})
		} else {
			result.Merges = append(result.Merges, MergeInstruction{
				Candidate:     candidate,
				ExistingTitle: kept.Title,
				Similarity:    dupSimilarity,
			})
		}
	}

	result.New = make([]entity.RawSignal, 0, len(accepted))
	for _, a := range accepted {
		result.New = append(result.New, a.signal)
	}
	return result
}

func (d *Deduplicator) matchHorizon(candidate entity.RawSignal, tokens map[string]struct{}, byURL map[string]*horizonEntry, entries []horizonEntry) (*horizonEntry, float64) {
	if candidate.SourceURL != "" {
		if entry, ok := byURL[candidate.SourceURL]; ok {
			return entry, 1.0
		}
	}
	for i := range entries {
		if sim := tokenOverlap(tokens, entries[i].tokens); sim > d.threshold {
			return &entries[i], sim
		}
	}
	return nil, 0
}
