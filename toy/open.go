package toy

import (
	"context"
	"toyshop/config"

	"github.com/pkg/errors"
)

// Drivers accepted in store.driver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, pageSize int) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(cfg.DataFile, pageSize)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.DSN, pageSize)
	case DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.Database, pageSize)
	}
	return nil, errors.Errorf("unknown store driver %q (want memory, postgres or mongo)", cfg.Driver)
}
