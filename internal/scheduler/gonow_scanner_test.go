package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beachscore/internal/recommend"
	"beachscore/internal/types"
)

var scanNow = time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC)

type mockRecommender struct{ mock.Mock }

func (m *mockRecommender) Beaches() []types.Beach {
	return m.Called().Get(0).([]types.Beach)
}

func (m *mockRecommender) Recommend(ctx context.Context, beachID string, q recommend.Query) (*recommend.Recommendation, error) {
	args := m.Called(ctx, beachID, q)
	rec, _ := args.Get(0).(*recommend.Recommendation)
	return rec, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, alert types.GoNowAlert) error {
	return m.Called(ctx, alert).Error(0)
}

type recordingMetrics struct {
	mu             sync.Mutex
	scanned        int
	alerts         int
	failures       int
	failedBeaches  []string
	scanRecordings int
}

func (r *recordingMetrics) RecordScan(_ context.Context, scanned, alerts, failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanned, r.alerts, r.failures = scanned, alerts, failures
	r.scanRecordings++
}

func (r *recordingMetrics) RecordBeachFailure(_ context.Context, beachID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedBeaches = append(r.failedBeaches, beachID)
}

var catalogue = []types.Beach{
	{ID: "clearwater", Name: "Clearwater"},
	{ID: "duck", Name: "Duck"},
	{ID: "santa-monica", Name: "Santa Monica"},
}

func goNowRecommendation(id string) *recommend.Recommendation {
	w := types.Window{ID: "win-" + id, StartTime: scanNow, EndTime: scanNow.Add(3 * time.Hour), Score: 90, IsGoNow: true}
	return &recommend.Recommendation{Windows: []types.Window{w}, GoNow: &w, Best: &w, GeneratedAt: scanNow}
}

func quietRecommendation() *recommend.Recommendation {
	w := types.Window{ID: "later", StartTime: scanNow.Add(6 * time.Hour), Score: 70}
	return &recommend.Recommendation{Windows: []types.Window{w}, Best: &w, GeneratedAt: scanNow}
}

func newTestScanner(rec Recommender, pub AlertPublisher, metrics ScanMetrics) *GoNowScanner {
	return NewGoNowScanner(GoNowScannerConfig{
		Recommender: rec,
		Publisher:   pub,
		Metrics:     metrics,
		Clock:       types.FixedClock(scanNow),
		Concurrency: 2,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestScan_PublishesGoNowBeaches(t *testing.T) {
	rec := &mockRecommender{}
	rec.On("Beaches").Return(catalogue)
	rec.On("Recommend", mock.Anything, "clearwater", recommend.Query{}).Return(goNowRecommendation("clearwater"), nil)
	rec.On("Recommend", mock.Anything, "duck", recommend.Query{}).Return(quietRecommendation(), nil)
	rec.On("Recommend", mock.Anything, "santa-monica", recommend.Query{}).Return(goNowRecommendation("santa-monica"), nil)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.AnythingOfType("types.GoNowAlert")).Return(nil)
	metrics := &recordingMetrics{}

	report, err := newTestScanner(rec, pub, metrics).Scan(context.Background(), ScanInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	require.Len(t, report.Alerts, 2)
	assert.Equal(t, "clearwater", report.Alerts[0].BeachID)
	assert.Equal(t, "Clearwater", report.Alerts[0].BeachName)
	assert.Equal(t, "win-clearwater", report.Alerts[0].WindowID)
	assert.Equal(t, 90, report.Alerts[0].Score)
	assert.Equal(t, "santa-monica", report.Alerts[1].BeachID)
	assert.Empty(t, report.Failures)

	pub.AssertNumberOfCalls(t, "Publish", 2)
	assert.Equal(t, 1, metrics.scanRecordings)
	assert.Equal(t, 3, metrics.scanned)
	assert.Equal(t, 2, metrics.alerts)
	assert.Equal(t, 0, metrics.failures)
}

func TestScan_IsolatesFailures(t *testing.T) {
	rec := &mockRecommender{}
	rec.On("Beaches").Return(catalogue)
	rec.On("Recommend", mock.Anything, "clearwater", recommend.Query{}).
		Return(nil, types.NewAppError(types.ErrCodeUpstreamWeather, "weather down", nil))
	rec.On("Recommend", mock.Anything, "duck", recommend.Query{}).Return(goNowRecommendation("duck"), nil)
	rec.On("Recommend", mock.Anything, "santa-monica", recommend.Query{}).Return(goNowRecommendation("santa-monica"), nil)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(a types.GoNowAlert) bool { return a.BeachID == "duck" })).
		Return(errors.New("sqs unavailable"))
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(a types.GoNowAlert) bool { return a.BeachID == "santa-monica" })).
		Return(nil)
	metrics := &recordingMetrics{}

	report, err := newTestScanner(rec, pub, metrics).Scan(context.Background(), ScanInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, "santa-monica", report.Alerts[0].BeachID)
	assert.Contains(t, report.Failures, "clearwater")
	assert.Contains(t, report.Failures, "duck")
	assert.ElementsMatch(t, []string{"clearwater", "duck"}, metrics.failedBeaches)
	assert.Equal(t, 2, metrics.failures)
}

func TestScan_DryRunAndSubset(t *testing.T) {
	rec := &mockRecommender{}
	rec.On("Beaches").Return(catalogue)
	rec.On("Recommend", mock.Anything, "duck", recommend.Query{}).Return(goNowRecommendation("duck"), nil)
	pub := &mockPublisher{}

	report, err := newTestScanner(rec, pub, nil).Scan(context.Background(), ScanInput{
		BeachIDs: []string{"duck", "atlantis"},
		DryRun:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scanned)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, "duck", report.Alerts[0].BeachID)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	rec.AssertNotCalled(t, "Recommend", mock.Anything, "clearwater", mock.Anything)
}

func TestScan_NilPublisherNeverSends(t *testing.T) {
	rec := &mockRecommender{}
	rec.On("Beaches").Return(catalogue[:1])
	rec.On("Recommend", mock.Anything, "clearwater", recommend.Query{}).Return(goNowRecommendation("clearwater"), nil)

	report, err := newTestScanner(rec, nil, nil).Scan(context.Background(), ScanInput{})
	require.NoError(t, err)
	assert.Len(t, report.Alerts, 1)
}

func TestScan_CancelledContext(t *testing.T) {
	rec := &mockRecommender{}
	rec.On("Beaches").Return(catalogue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	metrics := &recordingMetrics{}
	_, err := newTestScanner(rec, nil, metrics).Scan(ctx, ScanInput{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, metrics.scanRecordings)
	rec.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything)
}
