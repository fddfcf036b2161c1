package feed

import (
	"context"
	"log"
)

// Analyzer runs the analysis stage on a piece of text.
type Analyzer interface {
	AnalyzeText(ctx context.Context, name, text string) error
}

// Result holds the results of a feed analysis run.
type Result struct {
	Analyzed int
	Failed   int
}

// Analyze runs every post through a, one at a time. A failed post is logged
// and the run continues; a cancelled context stops it.
func Analyze(ctx context.Context, a Analyzer, posts []Post, onPost func(Post, error)) *Result {
	r := &Result{}
	for _, p := range posts {
		if ctx.Err() != nil {
			break
		}

		err := a.AnalyzeText(ctx, p.Name(), p.Text)
		if err != nil {
			r.Failed++
			log.Printf("Analysis failed for %s: %v", p.Name(), err)
		} else {
			r.Analyzed++
		}
		if onPost != nil {
			onPost(p, err)
		}
	}

	log.Printf("Feed analysis complete: %d analyzed, %d failed", r.Analyzed, r.Failed)
	return r
}
