// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"

	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/goldfish-inc/perseis-sub001/pkg/db"
	"github.com/goldfish-inc/perseis-sub001/pkg/pipeline"
	"github.com/goldfish-inc/perseis-sub001/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manager implements the pipeline.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) pipeline.SchemaManager {
	return &manager{operator: op}
}

// Create creates the initial database schema using
// GORM AutoMigrate. Also applies the partial unique indexes
// that guard the one-current-batch and one-vessel-per-IMO
// invariants.
func (m *manager) Create(
	ctx context.Context,
	cfg *config.Config,
) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	db := stdlib.OpenDBFromPool(pool)

	// Connect with GORM
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	// Run GORM AutoMigrate to create schema
	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	// Apply indexes GORM cannot express
	// (partial unique indexes)
	if err := m.applyIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate. Index application is idempotent,
// so it runs here as well.
func (m *manager) Migrate(
	ctx context.Context,
	cfg *config.Config,
) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	db := stdlib.OpenDBFromPool(pool)

	// Connect with GORM
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	// Run GORM AutoMigrate
	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(err)
	}

	if err := m.applyIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// applyIndexes executes the IndexDDL statements of every
// model. All statements use IF NOT EXISTS, so reruns are
// safe. The partial unique indexes here enforce invariants
// AutoMigrate tags cannot: at most one current batch per
// source and at most one vessel per non-empty IMO.
func (m *manager) applyIndexes(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	for _, model := range schema.AllModels() {
		gen, ok := model.(schema.DDLGenerator)
		if !ok {
			continue
		}
		for _, q := range gen.IndexDDL() {
			if _, err := pool.Exec(ctx, q); err != nil {
				return IndexError(gen.TableName(), err)
			}
		}
	}

	return nil
}
