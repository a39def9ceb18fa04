/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/schema"
)

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:querydsl_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name,notnull"`
	AppliedAt   time.Time `bun:"applied_at,notnull"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem is one versioned step.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// MigrationManager applies each migration at most once, recording it in
// the querydsl_migrations table.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	config MigrateConfig
	extra  []MigrationItem
}

func NewMigrationManager(db *bun.DB, logger Logger, config MigrateConfig) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, config: config}
}

// Add appends a migration run after the built-in ones in version order.
func (mm *MigrationManager) Add(items ...MigrationItem) {
	mm.extra = append(mm.extra, items...)
}

// RunMigrations creates the record table and applies pending migrations in
// ascending version order. Statement logging is muted unless
// QUERYDSL_SQL_MIGRATION is set.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("QUERYDSL_SQL_MIGRATION"); !ok {
		SetSilent(true)
		defer SetSilent(false)
	}

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	items := append([]MigrationItem{{
		Version:     "001",
		Name:        "create_entity_tables",
		Description: "Create the tables of registered entities",
		Up:          mm.createEntityTables,
	}}, mm.extra...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Version < items[j].Version })

	for _, item := range items {
		if err := mm.run(ctx, item); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", item.Version, err)
		}
	}
	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) run(ctx context.Context, item MigrationItem) error {
	applied, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("? = ?", bun.Ident("version"), item.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := item.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&Migration{
			Version:     item.Version,
			Name:        item.Name,
			AppliedAt:   time.Now(),
			Description: item.Description,
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration executed", "version", item.Version, "name", item.Name)
	return nil
}

func (mm *MigrationManager) createEntityTables(ctx context.Context, db bun.IDB) error {
	var entities []*schema.Entity
	for _, m := range RegisteredModels() {
		entities = append(entities, m.Entity())
	}
	fks, err := mm.foreignKeys(entities)
	if err != nil {
		return err
	}
	for _, e := range entities {
		q := db.NewCreateTable().Model(e.New()).IfNotExists()
		if fks != nil {
			for _, fk := range fks.ConstraintsFor(e.Table) {
				clause, args := fk.Clause()
				q = q.ForeignKey(clause, args...)
			}
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", e.Table, err)
		}
	}
	return nil
}

// foreignKeys prefers the configured YAML file and falls back to the
// relations of the entities. It returns nil when foreign keys are off.
func (mm *MigrationManager) foreignKeys(entities []*schema.Entity) (*ForeignKeyManager, error) {
	if !mm.config.EnableForeignKey {
		return nil, nil
	}
	if mm.config.ForeignKeyFile != "" {
		m, err := LoadForeignKeyManager(mm.logger, mm.config.ForeignKeyFile)
		if err == nil {
			return m, nil
		}
		mm.logger.Debug("Falling back to relation foreign keys", "error", err.Error())
	}
	return NewForeignKeyManager(mm.logger, entities...)
}

// AppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	var out []Migration
	err := mm.db.NewSelect().Model(&out).OrderExpr("? ASC", bun.Ident("version")).Scan(ctx)
	return out, err
}
