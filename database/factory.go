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
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

var supportedTypes = []string{"mysql", "postgres", "postgresql", "sqlite", "sqlite3"}

// Factory builds a Manager from configuration and initializes the store.
type Factory struct {
	manager Manager
	logger  Logger
}

func NewFactory() *Factory {
	return &Factory{logger: GetLogger()}
}

// CreateFromConfig applies environment overrides to cfg and builds its
// Manager.
func (f *Factory) CreateFromConfig(cfg *Config) (Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	overrideFromEnv(&cfg.Connection)
	if !supported(cfg.Connection.Type) {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Connection.Type, supportedTypes)
	}
	f.manager = NewManager(&cfg.Connection, cfg.Migrate)
	f.manager.SetLogger(f.logger)
	return f.manager, nil
}

func supported(typ string) bool {
	for _, t := range supportedTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// overrideFromEnv lets DB_* variables win over the file.
func overrideFromEnv(cfg *ConnectionConfig) {
	str := map[string]*string{
		"DB_TYPE":     &cfg.Type,
		"DB_HOST":     &cfg.Host,
		"DB_USERNAME": &cfg.Username,
		"DB_PASSWORD": &cfg.Password,
		"DB_NAME":     &cfg.DBName,
		"DB_SSLMODE":  &cfg.SSLMode,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	ints := map[string]*int{
		"DB_PORT":           &cfg.Port,
		"DB_MAX_IDLE_CONNS": &cfg.MaxIdleConns,
		"DB_MAX_OPEN_CONNS": &cfg.MaxOpenConns,
	}
	for key, dst := range ints {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = v
		}
	}
	seconds := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &cfg.ConnMaxLifetime,
		"DB_RECONNECT_INTERVAL": &cfg.ReconnectInterval,
	}
	for key, dst := range seconds {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = time.Duration(v) * time.Second
		}
	}
	if v := os.Getenv("DB_ENABLE_RECONNECT"); v != "" {
		cfg.EnableReconnect = v == "true"
	}
	if v := os.Getenv("DB_ENABLE_QUERY_LOG"); v != "" {
		cfg.EnableQueryLog = v == "true"
	}
}

// Initialize connects and optionally runs migrations.
func (f *Factory) Initialize(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.manager.GetDB().RegisterModel(RegisteredModelInstances()...)
	f.logger.Info("Database initialization completed")
	return nil
}

func (f *Factory) Manager() Manager {
	return f.manager
}

// DB returns the bun handle, nil before CreateFromConfig.
func (f *Factory) DB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

func (f *Factory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

func (f *Factory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

func (f *Factory) HealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{LastError: "database manager not initialized", LastCheckTime: time.Now()}
	}
	return f.manager.HealthCheck(ctx)
}

// Open is the one-call path used by tests and the CLI: build, connect,
// migrate when configured.
func Open(ctx context.Context, cfg *Config) (*Factory, error) {
	f := NewFactory()
	if _, err := f.CreateFromConfig(cfg); err != nil {
		return nil, err
	}
	if err := f.Initialize(ctx, cfg.Migrate.EnableMigrateOnStartup); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
