package di

import (
	"context"

	"itemname-api/application/ports"
	querybus "itemname-api/application/queries/bus"
	"itemname-api/infrastructure/config"
	"itemname-api/infrastructure/persistence/snapshot"
	"itemname-api/interfaces/http/rest"
	pkgerrors "itemname-api/pkg/errors"
	"itemname-api/pkg/observability"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Tracer         *observability.Tracer
	DynamoDBClient *awsdynamodb.Client
	Snapshot       *snapshot.Repository
	ItemRepo       ports.ItemRepository
	QueryBus       *querybus.QueryBus
	Metrics        *observability.Metrics
	Collector      *observability.Collector
	ErrorHandler   *pkgerrors.ErrorHandler
	Router         *rest.Router
}

// Shutdown flushes buffered metrics and logs
func (c *Container) Shutdown(ctx context.Context) error {
	err := c.Metrics.Flush(ctx)
	_ = c.Logger.Sync()
	return err
}
