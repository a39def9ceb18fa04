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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/querydsl/schema"
)

var referentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// ForeignKeyConstraint is one FOREIGN KEY clause of a table.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete,omitempty"`
	OnUpdate        string `yaml:"on_update,omitempty"`
	Description     string `yaml:"description,omitempty"`
}

func (fk ForeignKeyConstraint) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", fk.Table, fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
}

// Clause returns the query and args for bun's CreateTableQuery.ForeignKey.
func (fk ForeignKeyConstraint) Clause() (string, []interface{}) {
	q := "(?) REFERENCES ? (?)"
	if fk.OnDelete != "" {
		q += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		q += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return q, []interface{}{bun.Ident(fk.Column), bun.Ident(fk.ReferenceTable), bun.Ident(fk.ReferenceColumn)}
}

// Validate checks names and referential actions.
func (fk ForeignKeyConstraint) Validate() error {
	if fk.Table == "" || fk.Column == "" || fk.ReferenceTable == "" || fk.ReferenceColumn == "" {
		return fmt.Errorf("incomplete foreign key %s", fk)
	}
	for _, action := range []string{fk.OnDelete, fk.OnUpdate} {
		if action != "" && !validAction(action) {
			return fmt.Errorf("invalid referential action %q on %s", action, fk)
		}
	}
	return nil
}

func validAction(action string) bool {
	for _, a := range referentialActions {
		if strings.EqualFold(a, action) {
			return true
		}
	}
	return false
}

// ForeignKeyConfig is the YAML document listing foreign keys.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// ForeignKeyManager hands out the constraints of each table.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager derives one constraint per many-to-one relation of
// entities. Deleting the referenced row clears the reference.
func NewForeignKeyManager(logger Logger, entities ...*schema.Entity) (*ForeignKeyManager, error) {
	var constraints []ForeignKeyConstraint
	for _, e := range entities {
		for _, rel := range e.Relations() {
			if rel.Kind != schema.ManyToOneColumn {
				continue
			}
			target, err := rel.TargetEntity()
			if err != nil {
				return nil, err
			}
			constraints = append(constraints, ForeignKeyConstraint{
				Table:           e.Table,
				Column:          rel.JoinColumn,
				ReferenceTable:  target.Table,
				ReferenceColumn: target.PK().Name,
				OnDelete:        "SET NULL",
				Description:     rel.String(),
			})
		}
	}
	return &ForeignKeyManager{constraints: constraints, logger: logger}, nil
}

// LoadForeignKeyManager reads constraints from a YAML file instead.
func LoadForeignKeyManager(logger Logger, path string) (*ForeignKeyManager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign key file: %w", err)
	}
	var cfg ForeignKeyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foreign key file %s: %w", path, err)
	}
	m := &ForeignKeyManager{constraints: cfg.ForeignKeys, logger: logger}
	if errs := m.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("foreign key file %s: %w (%d errors in total)", path, errs[0], len(errs))
	}
	return m, nil
}

// ConstraintsFor returns the constraints declared on table.
func (m *ForeignKeyManager) ConstraintsFor(table string) []ForeignKeyConstraint {
	var out []ForeignKeyConstraint
	for _, c := range m.constraints {
		if strings.EqualFold(c.Table, table) {
			out = append(out, c)
		}
	}
	return out
}

func (m *ForeignKeyManager) Constraints() []ForeignKeyConstraint {
	out := make([]ForeignKeyConstraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

func (m *ForeignKeyManager) Validate() []error {
	var errs []error
	for _, c := range m.constraints {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Export writes the constraints as YAML, creating parent directories.
func (m *ForeignKeyManager) Export(path string) error {
	data, err := yaml.Marshal(&ForeignKeyConfig{ForeignKeys: m.constraints})
	if err != nil {
		return fmt.Errorf("failed to serialize foreign keys: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write foreign key file: %w", err)
	}
	if m.logger != nil {
		m.logger.Debug("Exported foreign keys", "path", path, "count", len(m.constraints))
	}
	return nil
}
