package observability

import (
	"context"
	"sync"
	"time"

	"itemname-api/application/queries/bus"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatumsPerRequest is the PutMetricData limit
const maxDatumsPerRequest = 1000

// CloudWatchAPI is the subset of the CloudWatch client used by Metrics
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics buffers query metrics and ships them to CloudWatch on Flush.
// With a nil client every datum is dropped.
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger

	mu     sync.Mutex
	buffer []types.MetricDatum
}

var _ bus.Metrics = (*Metrics)(nil)

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// Increment records a count of one for metric, dimensioned by label
func (m *Metrics) Increment(metric, label string) {
	m.record(metric, label, 1, types.StandardUnitCount)
}

// StartTimer starts timing an operation; Stop records the elapsed milliseconds
func (m *Metrics) StartTimer(metric, label string) bus.Timer {
	return &timer{
		metrics: m,
		metric:  metric,
		label:   label,
		start:   time.Now(),
	}
}

// Pending returns the number of buffered datums
func (m *Metrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

func (m *Metrics) record(metric, label string, value float64, unit types.StandardUnit) {
	if m.client == nil {
		return
	}

	datum := types.MetricDatum{
		MetricName: aws.String(metric),
		Dimensions: []types.Dimension{
			{
				Name:  aws.String("QueryType"),
				Value: aws.String(label),
			},
		},
		Value:     aws.Float64(value),
		Unit:      unit,
		Timestamp: aws.Time(time.Now()),
	}

	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	m.mu.Unlock()
}

// Flush sends every buffered datum. Datums of a failed request are dropped so a
// CloudWatch outage cannot grow the buffer without bound.
func (m *Metrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	pending := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	if m.client == nil || len(pending) == 0 {
		return nil
	}

	var firstErr error
	for start := 0; start < len(pending); start += maxDatumsPerRequest {
		end := min(start+maxDatumsPerRequest, len(pending))

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: pending[start:end],
		})
		if err != nil {
			m.logger.Warn("Failed to send metrics",
				zap.String("namespace", m.namespace),
				zap.Int("dropped", end-start),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Run flushes every interval until ctx is done, then flushes once more.
// A non-positive interval disables periodic flushing.
func (m *Metrics) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = m.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			_ = m.Flush(ctx)
		}
	}
}

type timer struct {
	metrics *Metrics
	metric  string
	label   string
	start   time.Time
}

func (t *timer) Stop() {
	elapsed := time.Since(t.start)
	t.metrics.record(t.metric, t.label, float64(elapsed.Milliseconds()), types.StandardUnitMilliseconds)
}
