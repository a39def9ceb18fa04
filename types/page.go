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

package types

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// Order is one "column [ASC|DESC]" term of a page request. Column is the
// declared column name, resolved by whoever runs the request.
type Order struct {
	Column    string
	Direction string
}

func (o Order) String() string {
	if o.Direction == "" {
		return o.Column
	}
	return o.Column + " " + o.Direction
}

// ParseOrder splits "age desc" into its column and direction.
func ParseOrder(s string) (Order, error) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		return Order{Column: parts[0]}, nil
	case 2:
		return Order{Column: parts[0], Direction: strings.ToUpper(parts[1])}, nil
	default:
		return Order{}, fmt.Errorf("invalid order %q", s)
	}
}

// PageRequest describes a 1-based page and its ordering.
type PageRequest struct {
	page     int
	pageSize int
	orders   []Order
}

// NewPageRequest builds a request; orders use the "column [ASC|DESC]" form.
func NewPageRequest(page, pageSize int, orders ...string) (*PageRequest, error) {
	p := &PageRequest{page: page, pageSize: pageSize}
	for _, s := range orders {
		o, err := ParseOrder(s)
		if err != nil {
			return nil, err
		}
		p.orders = append(p.orders, o)
	}
	return p, nil
}

// NewDefaultPageRequest builds an unordered request.
func NewDefaultPageRequest(page, pageSize int) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize}
}

func (p *PageRequest) GetPageSize() int {
	switch {
	case p.pageSize < 1:
		return DefaultPageSize
	case p.pageSize > MaxPageSize:
		return MaxPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		return 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetOrders() []Order {
	return p.orders
}

// Pagination is one page of items with the unpaged total.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int64
	Items    []T
}

// NewPagination builds an empty page for req.
func NewPagination[T any](req *PageRequest) *Pagination[T] {
	return &Pagination[T]{Page: req.GetPage(), PageSize: req.GetPageSize(), Items: make([]T, 0)}
}

// TotalPages rounds Total up to whole pages.
func (p *Pagination[T]) TotalPages() int {
	if p.PageSize < 1 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func (p *Pagination[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}
