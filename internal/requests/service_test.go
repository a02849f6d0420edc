package requests

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopesentry/backend/internal/analyzer"
	"github.com/scopesentry/backend/internal/intake"
	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
)

type fixture struct {
	service *Service
	db      *sqlite.Client
	project *models.Project
}

func newFixture(t *testing.T, cache Cache) *fixture {
	t.Helper()

	db, err := sqlite.NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())

	now := time.Now()
	client := &models.Client{
		ID:        uuid.New().String(),
		Name:      "Acme Bakery",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.InsertClient(client))

	project := &models.Project{
		ID:        uuid.New().String(),
		ClientID:  client.ID,
		Name:      "Bakery website",
		Status:    models.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.InsertProject(project))

	for i, item := range []struct{ title, desc string }{
		{"Homepage design", "Layout, hero section, and color scheme for the homepage"},
		{"About page", "Company story and team bios"},
	} {
		require.NoError(t, db.InsertScopeItem(&models.ScopeItem{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			Title:       item.title,
			Description: item.desc,
			Order:       i,
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
	}

	service := NewService(db, analyzer.New(analyzer.Config{}), intake.NewProcessor(0), cache)

	return &fixture{service: service, db: db, project: project}
}

func TestLogRequest_AnalyzesAndPersists(t *testing.T) {
	f := newFixture(t, nil)

	request, result, err := f.service.LogRequest(context.Background(), f.project.ID, LogInput{
		Content: "Oh and can you also add a blog?",
		Source:  models.SourceEmail,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, analyzer.ClassificationOutOfScope, result.Classification)

	assert.Equal(t, models.RequestAnalyzed, request.Status)
	assert.Equal(t, string(analyzer.ClassificationOutOfScope), request.Classification)
	require.NotNil(t, request.Confidence)
	assert.Equal(t, result.Confidence, *request.Confidence)
	assert.NotEmpty(t, request.AnalysisReasoning)
	assert.False(t, request.ManualOverride)

	// The title falls back to the first content line.
	assert.Equal(t, "Oh and can you also add a blog?", request.Title)

	history, err := f.db.ListAnalysisHistory(request.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, analyzer.StrategyRules, history[0].Strategy)
	assert.Contains(t, history[0].Indicators, "scope_creep")
}

func TestLogRequest_LinksBestMatchedItem(t *testing.T) {
	f := newFixture(t, nil)

	request, result, err := f.service.LogRequest(context.Background(), f.project.ID, LogInput{
		Content: "Here are the team bios for the about page",
		Source:  models.SourceEmail,
	})

	require.NoError(t, err)
	assert.Equal(t, analyzer.ClassificationInScope, result.Classification)
	require.NotEmpty(t, result.MatchedScopeItems)
	assert.Equal(t, result.MatchedScopeItems[0], request.LinkedScopeItemID)
}

func TestLogRequest_NormalizesHTML(t *testing.T) {
	f := newFixture(t, nil)

	request, _, err := f.service.LogRequest(context.Background(), f.project.ID, LogInput{
		Content: "<html><body><p>Can you also add a blog?</p></body></html>",
		Source:  models.SourceEmail,
	})

	require.NoError(t, err)
	assert.NotContains(t, request.Content, "<p>")
	assert.Contains(t, request.Content, "Can you also add a blog?")
}

func TestLogRequest_UnknownSourceDefaultsToOther(t *testing.T) {
	f := newFixture(t, nil)

	request, _, err := f.service.LogRequest(context.Background(), f.project.ID, LogInput{
		Content: "hello",
		Source:  "carrier-pigeon",
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceOther, request.Source)
}

func TestLogRequest_UnknownProject(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.service.LogRequest(context.Background(), "missing", LogInput{Content: "hello"})
	assert.Error(t, err)
}

func TestOverride(t *testing.T) {
	f := newFixture(t, nil)

	request, _, err := f.service.LogRequest(context.Background(), f.project.ID, LogInput{
		Content: "Oh and can you also add a blog?",
	})
	require.NoError(t, err)

	overridden, err := f.service.Override(context.Background(), request.ID, "in_scope", "")
	require.NoError(t, err)
	assert.Equal(t, "in_scope", overridden.Classification)
	assert.True(t, overridden.ManualOverride)

	_, err = f.service.Override(context.Background(), request.ID, "banana", "")
	assert.Error(t, err)
}

func TestReanalyze_ReplacesOverride(t *testing.T) {
	f := newFixture(t, nil)

	request, _, err := f.service.LogRequest(context.Background(), f.project.ID, LogInput{
		Content: "Oh and can you also add a blog?",
	})
	require.NoError(t, err)

	_, err = f.service.Override(context.Background(), request.ID, "in_scope", "")
	require.NoError(t, err)

	reanalyzed, result, err := f.service.Reanalyze(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, analyzer.ClassificationOutOfScope, result.Classification)
	assert.False(t, reanalyzed.ManualOverride)

	history, err := f.db.ListAnalysisHistory(request.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestBulkAnalyzePending(t *testing.T) {
	f := newFixture(t, nil)

	now := time.Now()
	for _, content := range []string{"Can you also add a blog?", "What about the footer?"} {
		require.NoError(t, f.db.InsertRequest(&models.ClientRequest{
			ID:             uuid.New().String(),
			ProjectID:      f.project.ID,
			Title:          "Imported",
			Content:        content,
			Source:         models.SourceEmail,
			Status:         models.RequestNew,
			Classification: "pending",
			CreatedAt:      now,
			UpdatedAt:      now,
		}))
	}

	processed, err := f.service.BulkAnalyzePending(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	pending, err := f.db.ListPendingRequests(f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.service.Preview(context.Background(), f.project.ID, "", "Can you also add a blog?")
	require.NoError(t, err)
	assert.Equal(t, analyzer.ClassificationOutOfScope, result.Classification)

	list, err := f.db.ListRequests(f.project.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

type stubCache struct {
	store         map[string]*analyzer.Result
	hits, misses  int
	invalidations int
}

func newStubCache() *stubCache {
	return &stubCache{store: make(map[string]*analyzer.Result)}
}

func (s *stubCache) GetAnalysis(ctx context.Context, projectID, fingerprint string) (*analyzer.Result, bool, error) {
	if result, ok := s.store[projectID+"/"+fingerprint]; ok {
		s.hits++
		return result, true, nil
	}
	s.misses++
	return nil, false, nil
}

func (s *stubCache) SetAnalysis(ctx context.Context, projectID, fingerprint string, result *analyzer.Result) error {
	s.store[projectID+"/"+fingerprint] = result
	return nil
}

func (s *stubCache) InvalidateProject(ctx context.Context, projectID string) error {
	s.invalidations++
	for key := range s.store {
		delete(s.store, key)
	}
	return nil
}

func TestLogRequest_UsesCache(t *testing.T) {
	cache := newStubCache()
	f := newFixture(t, cache)

	in := LogInput{Content: "Oh and can you also add a blog?", Source: models.SourceEmail}

	first, _, err := f.service.LogRequest(context.Background(), f.project.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.misses)
	assert.Equal(t, 0, cache.hits)

	second, _, err := f.service.LogRequest(context.Background(), f.project.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// Both requests carry the same verdict; the cached run is recorded as such.
	assert.Equal(t, first.Classification, second.Classification)
	history, err := f.db.ListAnalysisHistory(second.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "cache", history[0].Strategy)
}

func TestInvalidateScopeCache(t *testing.T) {
	cache := newStubCache()
	f := newFixture(t, cache)

	f.service.InvalidateScopeCache(context.Background(), f.project.ID)
	assert.Equal(t, 1, cache.invalidations)
}
