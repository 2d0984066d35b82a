package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uitokens/pkg/tokens"
)

type fakeLoader struct {
	loads  atomic.Int64
	err    error
	closed bool
}

func (f *fakeLoader) Load(_ context.Context, target string) (tokens.Source, error) {
	f.loads.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &tokens.Snapshot{
		PageURL:   target,
		PageTitle: "Fake",
		Nodes: []tokens.StyleSnapshot{
			{"color": "rgb(255, 0, 0)", "margin-top": "8px"},
			{"color": "rgb(255, 0, 0)", "margin-top": "16px"},
			{"color": "rgb(0, 0, 255)", "margin-top": "16px"},
		},
	}, nil
}

func (f *fakeLoader) Close() error {
	f.closed = true
	return nil
}

func newService(l *fakeLoader) *Service {
	return New(l, tokens.NewExtractor(tokens.ExtractorConfig{}), Config{})
}

func TestExtract_Caches(t *testing.T) {
	l := &fakeLoader{}
	svc := newService(l)
	ctx := context.Background()

	first, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)
	second, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), l.loads.Load())
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Cached: 1}, svc.Stats())
}

func TestExtract_CallerMutationDoesNotLeak(t *testing.T) {
	svc := newService(&fakeLoader{})
	ctx := context.Background()

	first, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)
	first.Colors.Text[0].Count = 999

	second, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Colors.Text[0].Count)
}

func TestExtract_Refresh(t *testing.T) {
	l := &fakeLoader{}
	svc := newService(l)
	ctx := context.Background()

	_, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)
	_, err = svc.Extract(ctx, "https://example.com/", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.loads.Load())
}

func TestExtract_LoadErrorNotCached(t *testing.T) {
	l := &fakeLoader{err: fmt.Errorf("%w: chrome:// pages are not accessible", tokens.ErrUnreachableTarget)}
	svc := newService(l)

	_, err := svc.Extract(context.Background(), "chrome://settings", false)
	assert.ErrorIs(t, err, tokens.ErrUnreachableTarget)
	assert.Equal(t, 0, svc.Stats().Cached)
}

func TestExtract_Expiry(t *testing.T) {
	l := &fakeLoader{}
	svc := New(l, tokens.NewExtractor(tokens.ExtractorConfig{}), Config{CacheTTL: 20 * time.Millisecond})
	ctx := context.Background()

	_, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := svc.Extract(ctx, "https://example.com/", false)
		return err == nil && l.loads.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestTokens(t *testing.T) {
	svc := newService(&fakeLoader{})
	ctx := context.Background()

	list, err := svc.Tokens(ctx, "https://example.com/", tokens.Margin, 0)
	require.NoError(t, err)
	assert.Equal(t, []tokens.Token{{Value: "16px", Count: 2}, {Value: "8px", Count: 1}}, list)

	list, err = svc.Tokens(ctx, "https://example.com/", tokens.AllColors, 1)
	require.NoError(t, err)
	assert.Equal(t, []tokens.Token{{Value: "#ff0000", Count: 2}}, list)

	_, err = svc.Tokens(ctx, "https://example.com/", tokens.Category("sizes"), 0)
	assert.ErrorIs(t, err, tokens.ErrUnknownCategory)
}

func TestInvalidate(t *testing.T) {
	l := &fakeLoader{}
	svc := newService(l)
	ctx := context.Background()

	_, err := svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)
	assert.True(t, svc.Invalidate("https://example.com/"))
	assert.False(t, svc.Invalidate("https://example.com/"))

	_, err = svc.Extract(ctx, "https://example.com/", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.loads.Load())
}

func TestConcurrentExtract(t *testing.T) {
	svc := newService(&fakeLoader{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := fmt.Sprintf("https://example.com/%d", i%4)
			report, err := svc.Extract(context.Background(), target, i%3 == 0)
			assert.NoError(t, err)
			assert.Equal(t, target, report.Meta.URL)
		}(i)
	}
	wg.Wait()
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "https://example.com/", CacheKey(" https://example.com/ "))

	abs, err := filepath.Abs("site/index.html")
	require.NoError(t, err)
	assert.Equal(t, abs, CacheKey("site/index.html"))
	assert.Equal(t, abs, CacheKey("./site/../site/index.html"))
}

func TestClose(t *testing.T) {
	l := &fakeLoader{}
	svc := newService(l)
	require.NoError(t, svc.Close())
	assert.True(t, l.closed)
}

type slowLoader struct {
	fakeLoader
	delay time.Duration
}

func (s *slowLoader) Load(ctx context.Context, target string) (tokens.Source, error) {
	time.Sleep(s.delay)
	return s.fakeLoader.Load(ctx, target)
}

func TestExtract_SharesInFlightLoad(t *testing.T) {
	l := &slowLoader{delay: 50 * time.Millisecond}
	svc := New(l, tokens.NewExtractor(tokens.ExtractorConfig{}), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Extract(context.Background(), "https://example.com/", false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), l.loads.Load())
}

func TestExtractAll(t *testing.T) {
	l := &fakeLoader{}
	svc := newService(l)
	targets := []string{"https://a.example/", "https://b.example/", "https://c.example/"}

	results := svc.ExtractAll(context.Background(), targets, 2, false)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, targets[i], r.Target)
		assert.Equal(t, targets[i], r.Report.Meta.URL)
	}
	assert.Equal(t, int64(3), l.loads.Load())
}

func TestExtractAll_PartialFailure(t *testing.T) {
	svc := New(&pickyLoader{}, tokens.NewExtractor(tokens.ExtractorConfig{}), Config{})

	results := svc.ExtractAll(context.Background(), []string{"https://ok.example/", "about:blank"}, 0, false)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, tokens.ErrUnreachableTarget)
	assert.Nil(t, results[1].Report)
}

type pickyLoader struct{ fakeLoader }

func (p *pickyLoader) Load(ctx context.Context, target string) (tokens.Source, error) {
	if target == "about:blank" {
		return nil, tokens.ErrUnreachableTarget
	}
	return p.fakeLoader.Load(ctx, target)
}

// sameURLLoader returns a different document per target, all reporting
// the same page URL, the way successive snapshots of one page do.
type sameURLLoader struct{ fakeLoader }

func (s *sameURLLoader) Load(_ context.Context, target string) (tokens.Source, error) {
	color := "rgb(255, 0, 0)"
	if target == "after.json" {
		color = "rgb(0, 0, 255)"
	}
	return &tokens.Snapshot{
		PageURL: "https://example.com/",
		Nodes:   []tokens.StyleSnapshot{{"color": color}},
	}, nil
}

func TestExtractAll_SnapshotsOfSamePage(t *testing.T) {
	svc := New(&sameURLLoader{}, tokens.NewExtractor(tokens.ExtractorConfig{}), Config{})

	for i := 0; i < 20; i++ {
		results := svc.ExtractAll(context.Background(), []string{"before.json", "after.json"}, 2, true)
		require.Len(t, results, 2)
		require.NoError(t, results[0].Err)
		require.NoError(t, results[1].Err)
		assert.Equal(t, "#ff0000", results[0].Report.Colors.Text[0].Value)
		assert.Equal(t, "#0000ff", results[1].Report.Colors.Text[0].Value)
	}
}
