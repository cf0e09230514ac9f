package di

import (
	"context"
	"fmt"

	"itemname-api/application/ports"
	querybus "itemname-api/application/queries/bus"
	queryhandlers "itemname-api/application/queries/handlers"
	"itemname-api/infrastructure/config"
	"itemname-api/infrastructure/persistence"
	"itemname-api/infrastructure/persistence/dynamodb"
	"itemname-api/infrastructure/persistence/snapshot"
	"itemname-api/interfaces/http/rest"
	"itemname-api/interfaces/http/rest/handlers"
	pkgerrors "itemname-api/pkg/errors"
	"itemname-api/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

const serviceName = "itemname-api"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = level
	}

	return zcfg.Build()
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config, tracer *observability.Tracer) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	tracer.InstrumentAWS(&awsCfg)
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates metrics instance. With metrics disabled the instance
// discards everything it records.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	var api observability.CloudWatchAPI
	if cfg.EnableMetrics {
		api = client
	}
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	return observability.NewMetrics(namespace, api, logger)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("itemname")
}

// ProvideSnapshot loads the bundled catalog when it is the configured source
func ProvideSnapshot(cfg *config.Config, logger *zap.Logger) (*snapshot.Repository, error) {
	if cfg.CatalogSource != config.SourceSnapshot {
		return nil, nil
	}

	repo, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded catalog snapshot",
		zap.String("path", cfg.SnapshotPath),
		zap.Int("count", repo.Count()),
	)
	return repo, nil
}

// ProvideItemRepository selects the catalog adapter and applies decorators
func ProvideItemRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	snap *snapshot.Repository,
	tracer *observability.Tracer,
	logger *zap.Logger,
) ports.ItemRepository {
	var repo ports.ItemRepository

	switch cfg.CatalogSource {
	case config.SourceSnapshot:
		repo = snap
	default:
		retry := dynamodb.DefaultRetryConfig()
		retry.MaxAttempts = cfg.MaxRetries
		retry.BaseDelay = cfg.RetryBaseDelay
		retry.MaxDelay = cfg.RetryMaxDelay

		repo = dynamodb.NewItemRepository(client, cfg.DynamoDBTable, retry, logger)
		if cfg.EnableCircuitBreaker {
			repo = persistence.NewCircuitBreakerItemRepository(
				repo,
				persistence.DefaultCircuitBreakerConfig("dynamodb-"+cfg.DynamoDBTable),
				logger,
			)
		}
	}

	if tracer.Enabled() {
		repo = persistence.NewTracingItemRepository(repo, tracer)
	}

	return repo
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.ExposeErrorDetails)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.ItemRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	metricsMiddleware := querybus.NewMetricsMiddleware(metrics)
	if err := queryhandlers.Register(queryBus, repo, logger, metricsMiddleware.Wrap); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideReadinessCheck reports which catalog source is serving
func ProvideReadinessCheck(cfg *config.Config, snap *snapshot.Repository) handlers.ReadinessCheck {
	return func(ctx context.Context) (map[string]interface{}, error) {
		details := map[string]interface{}{"source": cfg.CatalogSource}

		switch cfg.CatalogSource {
		case config.SourceSnapshot:
			if snap == nil {
				return nil, fmt.Errorf("snapshot not loaded")
			}
			details["items"] = snap.Count()
		default:
			if cfg.DynamoDBTable == "" {
				return nil, fmt.Errorf("table not configured")
			}
			details["table"] = cfg.DynamoDBTable
		}

		return details, nil
	}
}

// ProvideRouter creates the HTTP router. Prometheus is only exposed by the
// standalone server; Lambda reports through CloudWatch.
func ProvideRouter(
	cfg *config.Config,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	readiness handlers.ReadinessCheck,
	collector *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *rest.Router {
	opts := []rest.Option{rest.WithTimeout(cfg.RequestTimeout)}
	if !cfg.IsLambda {
		opts = append(opts, rest.WithPrometheus(collector), rest.WithTracing(tracer))
	}
	return rest.NewRouter(queryBus, errorHandler, readiness, logger, opts...)
}
