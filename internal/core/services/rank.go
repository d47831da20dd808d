package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// Scoring constants. The base score floors reward literal query
// evidence in the chunk text; the weights below multiply on top.
const (
	// phraseMatchScore is the base score floor for a chunk containing
	// the full query as a substring.
	phraseMatchScore = 0.70

	// termMatchBase and termMatchSlope shape the floor for partial term
	// matches: 0.40 + 0.2 x matchRatio, applied when at least half the
	// query terms appear in the chunk.
	termMatchBase     = 0.40
	termMatchSlope    = 0.2
	termMatchMinRatio = 0.5

	// minTermLen filters noise words out of term matching.
	minTermLen = 3

	// Base scores in [marginalLow, marginalHigh) flag a weak match.
	marginalLow  = 0.15
	marginalHigh = 0.40

	// recencyMaxBoost decays linearly to 1.0 over recencyWindowDays.
	recencyMaxBoost   = 1.05
	recencyWindowDays = 30

	// activeProjectBoost applies in all-projects searches to candidates
	// from the caller's active project.
	activeProjectBoost = 1.2

	// Diversity bounds: at most maxResults chunks overall, at most
	// maxChunksPerDocument from any one document, at most one chunk per
	// (document, section) pair.
	maxResults           = 10
	maxChunksPerDocument = 3
)

// candidate pairs a hydrated chunk with its owning document while the
// retrieval pipeline scores and filters it.
type candidate struct {
	chunk      domain.Chunk
	doc        *domain.Document
	similarity float64
	baseScore  float64
	finalScore float64
	isMarginal bool
}

// scoreCandidates computes base and final scores for every candidate.
func scoreCandidates(cands []candidate, query string, opts domain.SearchOptions, now time.Time) {
	for i := range cands {
		c := &cands[i]
		c.baseScore = keywordBoost(c.similarity, c.chunk.Content, query)
		c.isMarginal = c.baseScore >= marginalLow && c.baseScore < marginalHigh
		c.finalScore = c.baseScore *
			c.doc.Type.Weight() *
			recencyBoost(c.chunk.CreatedAt, now) *
			scopeBoost(opts, c.doc.ProjectID)
	}
}

// keywordBoost raises the base score when the chunk text carries
// literal query evidence. A full-phrase match floors the score at
// phraseMatchScore; matching at least half the query terms floors it at
// termMatchBase + termMatchSlope x ratio. The raw similarity always
// survives when it is higher.
func keywordBoost(similarity float64, content, query string) float64 {
	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return similarity
	}

	if strings.Contains(contentLower, queryLower) {
		return math.Max(similarity, phraseMatchScore)
	}

	terms := queryTerms(queryLower)
	if len(terms) == 0 {
		return similarity
	}
	matched := 0
	for _, term := range terms {
		if strings.Contains(contentLower, term) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(terms))
	if ratio >= termMatchMinRatio {
		return math.Max(similarity, termMatchBase+termMatchSlope*ratio)
	}

	return similarity
}

// queryTerms tokenises a lowercased query into terms long enough to
// carry meaning.
func queryTerms(queryLower string) []string {
	fields := strings.Fields(queryLower)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minTermLen {
			terms = append(terms, f)
		}
	}
	return terms
}

// recencyBoost favours freshly indexed chunks: recencyMaxBoost at age
// zero, decaying linearly to 1.0 at recencyWindowDays, flat beyond.
func recencyBoost(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	if age <= 0 {
		return recencyMaxBoost
	}
	days := age.Hours() / 24
	if days >= recencyWindowDays {
		return 1.0
	}
	return recencyMaxBoost - (recencyMaxBoost-1.0)*(days/recencyWindowDays)
}

// scopeBoost favours the caller's active project, but only when the
// search spans multiple projects.
func scopeBoost(opts domain.SearchOptions, projectID string) float64 {
	if opts.AllProjects && opts.ActiveProjectID != "" && projectID == opts.ActiveProjectID {
		return activeProjectBoost
	}
	return 1.0
}

// rankCandidates orders candidates by final score descending. Ties
// break on document ID then chunk index, ascending, so identical
// corpora always rank identically.
func rankCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].finalScore != cands[j].finalScore {
			return cands[i].finalScore > cands[j].finalScore
		}
		if cands[i].chunk.DocumentID != cands[j].chunk.DocumentID {
			return cands[i].chunk.DocumentID < cands[j].chunk.DocumentID
		}
		return cands[i].chunk.Index < cands[j].chunk.Index
	})
}

// diversityFilter greedily selects from the ranked candidates while
// capping per-document and per-section representation, so one large,
// well-matched document cannot monopolise the results.
func diversityFilter(cands []candidate) []candidate {
	perDoc := make(map[string]int)
	seenSection := make(map[string]bool)

	selected := make([]candidate, 0, maxResults)
	for _, c := range cands {
		if len(selected) == maxResults {
			break
		}
		if perDoc[c.chunk.DocumentID] >= maxChunksPerDocument {
			continue
		}
		// Chunks without a section reference are exempt from the
		// per-section cap.
		if c.chunk.SectionRef != "" {
			key := c.chunk.DocumentID + "\x00" + c.chunk.SectionRef
			if seenSection[key] {
				continue
			}
			seenSection[key] = true
		}
		perDoc[c.chunk.DocumentID]++
		selected = append(selected, c)
	}
	return selected
}

// groupResults reshapes the selected, ranked candidates into
// per-document groups. Chunks within a group stay best first; groups
// order by their best final score, ties breaking on document ID.
func groupResults(cands []candidate) []domain.ResultGroup {
	byDoc := make(map[string]*domain.ResultGroup)
	order := make([]string, 0, len(cands))

	for _, c := range cands {
		group, ok := byDoc[c.chunk.DocumentID]
		if !ok {
			group = &domain.ResultGroup{Document: *c.doc}
			byDoc[c.chunk.DocumentID] = group
			order = append(order, c.chunk.DocumentID)
		}
		group.Chunks = append(group.Chunks, domain.ScoredChunk{
			Chunk:      c.chunk,
			Similarity: c.similarity,
			BaseScore:  c.baseScore,
			FinalScore: c.finalScore,
			IsMarginal: c.isMarginal,
		})
		if c.finalScore > group.BestScore {
			group.BestScore = c.finalScore
		}
	}

	groups := make([]domain.ResultGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byDoc[id])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].BestScore != groups[j].BestScore {
			return groups[i].BestScore > groups[j].BestScore
		}
		return groups[i].Document.ID < groups[j].Document.ID
	})
	return groups
}
