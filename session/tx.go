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

package session

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/schema"
)

// Begin opens a transaction on db and returns a session bound to it.
func Begin(ctx context.Context, db bun.IDB, reg *schema.Registry) (*Session, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	s := New(tx, reg)
	s.tx = &tx
	s.logger().Debug("begin")
	return s, nil
}

// Commit commits the session transaction and clears the cache.
func (s *Session) Commit() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	defer s.Clear()
	s.logger().Debug("commit")
	return s.tx.Commit()
}

// Rollback discards the session transaction and clears the cache.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	defer s.Clear()
	s.logger().Debug("rollback")
	return s.tx.Rollback()
}

// WithinTx runs fn in a transaction: committed when fn returns nil, rolled
// back on error or panic. The session cache is cleared on every path.
func WithinTx(ctx context.Context, db bun.IDB, reg *schema.Registry, fn func(ctx context.Context, s *Session) error) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		s := New(tx, reg)
		defer s.Clear()
		if err := fn(ctx, s); err != nil {
			s.logger().WithError(err).Debug("rollback")
			return err
		}
		return nil
	})
}
