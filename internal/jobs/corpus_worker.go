package jobs

import (
	"context"
	"log"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/service"
)

// CorpusLoader defines the corpus loading operation the worker depends on
type CorpusLoader interface {
	LoadCorpus(ctx context.Context, source service.DocumentSource, force bool) (*domain.LoadReport, error)
}

// CorpusWorker rescans the document source so courses added after startup
// get ingested. Already-ingested titles are skipped by the load path, so a
// rescan over an unchanged corpus is a no-op.
type CorpusWorker struct {
	loader CorpusLoader
	source service.DocumentSource
}

func NewCorpusWorker(loader CorpusLoader, source service.DocumentSource) *CorpusWorker {
	return &CorpusWorker{loader: loader, source: source}
}

// ProcessJobs runs one rescan pass.
func (w *CorpusWorker) ProcessJobs(ctx context.Context) error {
	report, err := w.loader.LoadCorpus(ctx, w.source, false)
	if err != nil {
		return err
	}

	if len(report.Courses) > 0 {
		log.Printf("corpus rescan: ingested %d new course(s), %d chunk(s)", len(report.Courses), report.TotalChunks)
	}
	return nil
}
