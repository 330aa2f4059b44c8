// Package jobsearch provides a Bleve keyword index over job postings.
package jobsearch

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/omiai/internal/models"
)

// titleBoost multiplies the score contribution from title matches so that a
// posting named after the query outranks one that merely mentions it in the
// description.
const titleBoost = 3.0

// Result is a single job search hit.
type Result struct {
	JobID string  `json:"job_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Index is a Bleve keyword index over job postings, searched by title and
// description text.
type Index struct {
	index bleve.Index
}

// jobDoc is the indexed shape of a posting.
type jobDoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a rebuild after a mapping
// change.
func NewIndex(path string) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact words recruiters type.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	im.AddDocumentMapping("job", docMapping)
	im.DefaultType = "job"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open job index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create job index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexJob adds or updates a posting in the index.
func (ix *Index) IndexJob(ctx context.Context, job *models.JobPosting) error {
	return ix.index.Index(job.ID, &jobDoc{
		Title:       job.TitleClean,
		Description: job.DescriptionClean,
	})
}

// IndexJobs indexes a batch of postings.
func (ix *Index) IndexJobs(ctx context.Context, jobs []*models.JobPosting) error {
	for _, job := range jobs {
		if err := ix.IndexJob(ctx, job); err != nil {
			return fmt.Errorf("index job %s: %w", job.ID, err)
		}
	}
	return nil
}

// Delete removes a posting from the index.
func (ix *Index) Delete(ctx context.Context, jobID string) error {
	return ix.index.Delete(jobID)
}

// Search runs title and description match queries and merges them with
// additive scoring, title hits weighted by titleBoost. Returns up to limit
// results ordered by merged score.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	// Request enough from each side so the merged top "limit" is correct
	// (the same posting can appear in both).
	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	titleReq := bleve.NewSearchRequest(titleQuery)
	titleReq.Size = reqSize
	titleReq.Fields = []string{"title"}

	descQuery := bleve.NewMatchQuery(query)
	descQuery.SetField("description")
	descReq := bleve.NewSearchRequest(descQuery)
	descReq.Size = reqSize
	descReq.Fields = []string{"title"}

	titleResults, err := ix.index.Search(titleReq)
	if err != nil {
		return nil, fmt.Errorf("job title search: %w", err)
	}
	descResults, err := ix.index.Search(descReq)
	if err != nil {
		return nil, fmt.Errorf("job description search: %w", err)
	}

	scores := make(map[string]float64)
	titles := make(map[string]string)
	for _, hit := range titleResults.Hits {
		scores[hit.ID] += hit.Score * titleBoost
		if t, ok := hit.Fields["title"].(string); ok {
			titles[hit.ID] = t
		}
	}
	for _, hit := range descResults.Hits {
		scores[hit.ID] += hit.Score
		if t, ok := hit.Fields["title"].(string); ok {
			titles[hit.ID] = t
		}
	}

	merged := make([]*Result, 0, len(scores))
	for id, score := range scores {
		merged = append(merged, &Result{JobID: id, Title: titles[id], Score: score})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].JobID < merged[j].JobID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// Count returns the number of indexed postings.
func (ix *Index) Count() (uint64, error) {
	return ix.index.DocCount()
}

// Close closes the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
