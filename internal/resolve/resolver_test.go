package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/linker-cli/internal/directory"
	"github.com/sells-group/linker-cli/internal/match"
)

// stubFetcher serves canned pages keyed by URL and records every call.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("status 404 for %s", url)
	}
	return []byte(page), nil
}

func searchPage(links ...[2]string) string {
	page := "<html><body>"
	for _, l := range links {
		page += fmt.Sprintf(`<a href=%q>%s</a>`, l[0], l[1])
	}
	return page + "</body></html>"
}

func newTestResolver(f *stubFetcher, cfg Config) *Resolver {
	return New(directory.NewIJF(""), f, match.WeightedOverlap{MinTokens: 2}, cfg)
}

func TestResolve_AcceptsFirstPage(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("SHAHEEN Nigara", 1): searchPage([2]string{"/judoka/1", "Nigara Shaheen"}),
	}}
	r := newTestResolver(f, Config{MaxPages: 3, TopN: 5, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), []string{"SHAHEEN Nigara", "Nigara SHAHEEN"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://www.ijf.org/judoka/1", got.URL)
	assert.InDelta(t, 1.0, got.Score, 1e-9)
	// Early termination: the second query is never submitted.
	assert.Len(t, f.calls, 1)
}

func TestResolve_BestSurvivesAcrossQueries(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("SMITH John", 1): searchPage([2]string{"/judoka/1", "Jane Marie Doe"}),
		d.SearchURL("John SMITH", 1): searchPage([2]string{"/judoka/2", "John Smith"}),
	}}
	r := newTestResolver(f, Config{MaxPages: 1, TopN: 5, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), []string{"SMITH John", "John SMITH"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://www.ijf.org/judoka/2", got.URL)
}

func TestResolve_BelowThresholdReturnsNil(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("John Smith", 1): searchPage([2]string{"/judoka/1", "Jane Doe"}),
	}}
	r := newTestResolver(f, Config{MaxPages: 1, TopN: 5, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), []string{"John Smith"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve_FetchFailureIsNoEvidence(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{}}
	r := newTestResolver(f, Config{MaxPages: 3, TopN: 5, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), []string{"John Smith", "Smith John"})
	require.NoError(t, err)
	assert.Nil(t, got)
	// A failed page moves on to the next query, not the next page.
	assert.Len(t, f.calls, 2)
}

func TestResolve_EmptyQueries(t *testing.T) {
	f := &stubFetcher{}
	r := newTestResolver(f, Config{MaxPages: 3, TopN: 5, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, f.calls)
}

func TestResolve_EmptyDisplayNameNeverScored(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("John Smith", 1): searchPage([2]string{"/judoka/1", ""}),
	}}
	r := newTestResolver(f, Config{MaxPages: 1, TopN: 5, Threshold: 0.0})

	got, err := r.Resolve(context.Background(), []string{"John Smith"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve_TopNLimitsConsideration(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("John Smith", 1): searchPage(
			[2]string{"/judoka/1", "Jane Doe"},
			[2]string{"/judoka/2", "John Smith"},
		),
	}}
	r := newTestResolver(f, Config{MaxPages: 1, TopN: 1, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), []string{"John Smith"})
	require.NoError(t, err)
	// The perfect match sits beyond the per-page consideration window.
	assert.Nil(t, got)
}

func TestResolve_RepeatedCandidateDoesNotConsumeWindow(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("John Smith", 1): searchPage([2]string{"/judoka/1", "Jane Doe"}),
		d.SearchURL("John Smith", 2): searchPage(
			[2]string{"/judoka/1", "Jane Doe"},
			[2]string{"/judoka/2", "John Smith"},
		),
	}}
	r := newTestResolver(f, Config{MaxPages: 3, TopN: 1, Threshold: 0.65})

	// The page-1 candidate reappears at the top of page 2. It was already
	// scored, so it must not crowd the fresh candidate out of the window.
	got, err := r.Resolve(context.Background(), []string{"John Smith"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://www.ijf.org/judoka/2", got.URL)
}

func TestResolve_PagesAdvanceUntilAccept(t *testing.T) {
	d := directory.NewIJF("")
	f := &stubFetcher{pages: map[string]string{
		d.SearchURL("John Smith", 1): searchPage([2]string{"/judoka/1", "Jane Doe"}),
		d.SearchURL("John Smith", 2): searchPage([2]string{"/judoka/2", "John Smith"}),
	}}
	r := newTestResolver(f, Config{MaxPages: 3, TopN: 5, Threshold: 0.65})

	got, err := r.Resolve(context.Background(), []string{"John Smith"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://www.ijf.org/judoka/2", got.URL)
	assert.Len(t, f.calls, 2)
}

func TestResolve_Idempotent(t *testing.T) {
	d := directory.NewIJF("")
	pages := map[string]string{
		d.SearchURL("SHAHEEN Nigara", 1): searchPage([2]string{"/judoka/1", "Nigara Shaheen"}),
	}
	cfg := Config{MaxPages: 3, TopN: 5, Threshold: 0.65}

	first, err := newTestResolver(&stubFetcher{pages: pages}, cfg).Resolve(context.Background(), []string{"SHAHEEN Nigara"})
	require.NoError(t, err)
	second, err := newTestResolver(&stubFetcher{pages: pages}, cfg).Resolve(context.Background(), []string{"SHAHEEN Nigara"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &stubFetcher{}
	r := newTestResolver(f, Config{MaxPages: 1, TopN: 5, Threshold: 0.65})
	_, err := r.Resolve(ctx, []string{"John Smith"})
	require.Error(t, err)
}
