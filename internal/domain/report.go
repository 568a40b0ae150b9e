package domain

// SkippedDocument records one document that failed to load during a corpus
// load, with the reason it was skipped.
type SkippedDocument struct {
	Path   string
	Reason string
}

// LoadReport accumulates the outcome of a corpus load. Per-document failures
// are reported here rather than aborting the rest of the load.
type LoadReport struct {
	Courses     []CourseStats
	TotalChunks int
	Skipped     []SkippedDocument
}

// AddSkip appends a skipped document to the report.
func (r *LoadReport) AddSkip(path, reason string) {
	r.Skipped = append(r.Skipped, SkippedDocument{Path: path, Reason: reason})
}
