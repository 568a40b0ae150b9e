package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/service"
)

// MockLoader mocks the corpus loader
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadCorpus(ctx context.Context, source service.DocumentSource, force bool) (*domain.LoadReport, error) {
	args := m.Called(ctx, source, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoadReport), args.Error(1)
}

type nopSource struct{}

func (nopSource) List(ctx context.Context) ([]string, error)            { return nil, nil }
func (nopSource) Read(ctx context.Context, path string) ([]byte, error) { return nil, nil }

func TestCorpusWorker_ProcessJobs(t *testing.T) {
	loader := new(MockLoader)
	source := nopSource{}
	worker := NewCorpusWorker(loader, source)

	report := &domain.LoadReport{
		Courses:     []domain.CourseStats{{Title: "Intro to X", LessonCount: 2}},
		TotalChunks: 7,
	}
	loader.On("LoadCorpus", mock.Anything, source, false).Return(report, nil)

	err := worker.ProcessJobs(context.Background())

	require.NoError(t, err)
	loader.AssertExpectations(t)
}

func TestCorpusWorker_ProcessJobs_LoadFailure(t *testing.T) {
	loader := new(MockLoader)
	worker := NewCorpusWorker(loader, nopSource{})

	loader.On("LoadCorpus", mock.Anything, mock.Anything, false).
		Return(nil, errors.New("source unreachable"))

	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
}
