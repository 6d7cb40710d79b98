// Package bootstrap turns configuration into a ready data source.
package bootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/config"
	mongodoc "github.com/sngm3741/offer-finder/api/internal/infrastructure/mongo"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

// Backend is an opened data source plus its lifecycle hooks. Health, Watch
// and Close are never nil.
type Backend struct {
	Source source.Source
	Health func(ctx context.Context) error
	// Watch blocks, keeping cached datasets fresh, until ctx is done.
	Watch func(ctx context.Context) error
	Close func(ctx context.Context) error
}

func noop(context.Context) error { return nil }

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Open connects the data source selected by cfg.DataSource.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.DataSource {
	case config.SourceHTTP:
		src := source.NewHTTPSource(source.HTTPConfig{
			Endpoint: cfg.DataSourceURL,
			Timeout:  cfg.FetchTimeout,
			Logger:   logger,
		})
		return &Backend{Source: src, Health: noop, Watch: blockUntilDone, Close: noop}, nil

	case config.SourceFile:
		src := source.NewFileSource(cfg.DataDir, logger)
		return &Backend{
			Source: src,
			Health: func(ctx context.Context) error {
				_, err := src.Companies(ctx)
				return err
			},
			Watch: func(ctx context.Context) error { return src.Watch(ctx, nil) },
			Close: noop,
		}, nil

	case config.SourceMongo:
		client, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := mongodoc.NewStoreRepository(client.Database(cfg.MongoDatabase), cfg.StoreCollection)
		return &Backend{
			Source: repo,
			Health: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			Watch:  blockUntilDone,
			Close:  client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
}

// ConnectMongo dials MongoDB within cfg.Timeout.
func ConnectMongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
	}
	return client, nil
}
