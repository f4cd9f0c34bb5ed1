// Package telemetry buffers BeachScore metrics and publishes them to
// CloudWatch.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"beachscore/internal/types"
)

// maxDatumsPerCall is the PutMetricData batch limit.
const maxDatumsPerCall = 1000

// maxBuffered bounds memory when CloudWatch is unreachable. Older datums are
// dropped first.
const maxBuffered = 20000

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Recorder collects request, provider and scan metrics in memory and sends
// them on Flush. Record methods never block on the network, so the HTTP
// middleware and the condition aggregator can call them inline.
type Recorder struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []cwtypes.MetricDatum
	dropped int
}

// NewRecorder creates a Recorder. An empty namespace uses types.MetricNamespace.
func NewRecorder(client CloudWatchClient, namespace string, logger *slog.Logger) *Recorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		client:    client,
		namespace: namespace,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordRequest buffers APIRequestCount and APILatency for one request.
func (r *Recorder) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		dimension(types.DimEndpoint, endpoint),
		dimension(types.DimMethod, method),
		dimension(types.DimStatus, status),
	}
	r.add(
		r.datum(types.MetricAPIRequestCount, 1, cwtypes.StandardUnitCount, dims),
		r.datum(types.MetricAPILatency, float64(duration.Milliseconds()), cwtypes.StandardUnitMilliseconds, dims),
	)
}

// RecordProviderFailure buffers one ExternalAPIFailure for provider.
func (r *Recorder) RecordProviderFailure(_ context.Context, provider string) {
	r.add(r.datum(types.MetricExternalAPIFailure, 1, cwtypes.StandardUnitCount,
		[]cwtypes.Dimension{dimension(types.DimProvider, provider)}))
}

// RecordScan buffers the totals of one go-now scan.
func (r *Recorder) RecordScan(_ context.Context, scanned, alerts, failures int) {
	r.add(
		r.datum(types.MetricBeachesScanned, float64(scanned), cwtypes.StandardUnitCount, nil),
		r.datum(types.MetricGoNowAlerts, float64(alerts), cwtypes.StandardUnitCount, nil),
		r.datum(types.MetricScanFailure, float64(failures), cwtypes.StandardUnitCount, nil),
	)
}

// RecordBeachFailure buffers a ScanFailure for a single beach.
func (r *Recorder) RecordBeachFailure(_ context.Context, beachID string) {
	r.add(r.datum(types.MetricScanFailure, 1, cwtypes.StandardUnitCount,
		[]cwtypes.Dimension{dimension(types.DimBeach, beachID)}))
}

// Pending reports how many datums are waiting to be sent.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Flush sends every buffered datum. Batches that fail are put back so the
// next Flush retries them; the first error is returned.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	dropped := r.dropped
	r.dropped = 0
	r.mu.Unlock()

	if dropped > 0 {
		r.logger.WarnContext(ctx, "metric buffer overflowed", "dropped", dropped)
	}

	var firstErr error
	for start := 0; start < len(batch); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(batch))
		_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(r.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to publish metrics",
				"error", err.Error(),
				"datums", end-start,
			)
			r.add(batch[start:]...)
			firstErr = fmt.Errorf("telemetry: put metric data: %w", err)
			break
		}
	}
	return firstErr
}

// Run flushes every interval until ctx is cancelled, then flushes once more
// with a short grace period.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			_ = r.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			_ = r.Flush(ctx)
		}
	}
}

func (r *Recorder) add(ds ...cwtypes.MetricDatum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, ds...)
	if over := len(r.pending) - maxBuffered; over > 0 {
		r.pending = append(r.pending[:0:0], r.pending[over:]...)
		r.dropped += over
	}
}

func (r *Recorder) datum(name string, value float64, unit cwtypes.StandardUnit, dims []cwtypes.Dimension) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(r.now().UTC()),
		Dimensions: dims,
	}
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}
