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
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalFactory *Factory
)

// InitDB opens the process-wide database.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	f, err := Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalFactory != nil {
		_ = globalFactory.Close()
	}
	globalFactory = f
	return f.DB(), nil
}

// GetDB returns the process-wide handle or nil.
func GetDB() *bun.DB {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory == nil {
		return nil
	}
	return globalFactory.DB()
}

func CloseDB() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalFactory == nil {
		return nil
	}
	err := globalFactory.Close()
	globalFactory = nil
	return err
}

func GetHealthStatus(ctx context.Context) *HealthStatus {
	globalMu.RLock()
	f := globalFactory
	globalMu.RUnlock()
	if f == nil {
		return &HealthStatus{LastError: "database not initialized"}
	}
	return f.HealthStatus(ctx)
}
