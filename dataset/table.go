// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/gorse-io/filmify/common/util"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Kind is the value type of a column.
type Kind int

const (
	Int Kind = iota
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Numeric returns true for Int and Float.
func (k Kind) Numeric() bool {
	return k == Int || k == Float
}

// Column is a named, typed sequence of values. Missing floats are NaN.
type Column struct {
	Name    string
	Kind    Kind
	ints    []int64
	floats  []float64
	strings []string
}

func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: Int, ints: values}
}

func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Float, floats: values}
}

func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: String, strings: values}
}

func (c *Column) Len() int {
	switch c.Kind {
	case Int:
		return len(c.ints)
	case Float:
		return len(c.floats)
	default:
		return len(c.strings)
	}
}

// Int returns the i-th value as an integer. Floats are truncated and strings
// are parsed, yielding 0 on failure.
func (c *Column) Int(i int) int64 {
	switch c.Kind {
	case Int:
		return c.ints[i]
	case Float:
		return int64(c.floats[i])
	default:
		v, _ := strconv.ParseInt(c.strings[i], 10, 64)
		return v
	}
}

// Float returns the i-th value as a float. Unparsable strings are NaN.
func (c *Column) Float(i int) float64 {
	switch c.Kind {
	case Int:
		return float64(c.ints[i])
	case Float:
		return c.floats[i]
	default:
		v, err := strconv.ParseFloat(c.strings[i], 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// Text returns the i-th value formatted as text. Integral floats format
// like integers so that Int and Float keys compare equal.
func (c *Column) Text(i int) string {
	switch c.Kind {
	case Int:
		return strconv.FormatInt(c.ints[i], 10)
	case Float:
		return strconv.FormatFloat(c.floats[i], 'f', -1, 64)
	default:
		return c.strings[i]
	}
}

func (c *Column) take(indices []int) *Column {
	column := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case Int:
		column.ints = lo.Map(indices, func(i int, _ int) int64 { return c.ints[i] })
	case Float:
		column.floats = lo.Map(indices, func(i int, _ int) float64 { return c.floats[i] })
	default:
		column.strings = lo.Map(indices, func(i int, _ int) string { return c.strings[i] })
	}
	return column
}

func (c *Column) rename(name string) *Column {
	column := *c
	column.Name = name
	return &column
}

// Table is an immutable in-memory table of equally long columns.
type Table struct {
	columns []*Column
	index   map[string]int
	numRows int
}

func NewTable(columns ...*Column) (*Table, error) {
	table := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, column := range columns {
		if _, exist := table.index[column.Name]; exist {
			return nil, errors.AlreadyExistsf("column %s", column.Name)
		}
		table.index[column.Name] = i
		if i == 0 {
			table.numRows = column.Len()
		} else if column.Len() != table.numRows {
			return nil, errors.Errorf("column %s has %d rows, expected %d", column.Name, column.Len(), table.numRows)
		}
	}
	return table, nil
}

func (t *Table) NumRows() int {
	return t.numRows
}

func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Shape returns the number of rows and columns.
func (t *Table) Shape() (int, int) {
	return t.numRows, len(t.columns)
}

func (t *Table) Columns() []*Column {
	return t.columns
}

func (t *Table) ColumnNames() []string {
	return lo.Map(t.columns, func(c *Column, _ int) string { return c.Name })
}

func (t *Table) HasColumn(name string) bool {
	_, exist := t.index[name]
	return exist
}

func (t *Table) Column(name string) (*Column, error) {
	i, exist := t.index[name]
	if !exist {
		return nil, errors.NotFoundf("column %s", name)
	}
	return t.columns[i], nil
}

// NumericColumns returns names of Int and Float columns in table order.
func (t *Table) NumericColumns() []string {
	return lo.FilterMap(t.columns, func(c *Column, _ int) (string, bool) {
		return c.Name, c.Kind.Numeric()
	})
}

// Take returns a table with the rows at indices, in that order.
func (t *Table) Take(indices []int) *Table {
	return &Table{
		columns: lo.Map(t.columns, func(c *Column, _ int) *Column { return c.take(indices) }),
		index:   t.index,
		numRows: len(indices),
	}
}

// Filter returns the rows for which predicate returns true.
func (t *Table) Filter(predicate func(row int) bool) *Table {
	return t.Take(lo.Filter(util.RangeInt(t.numRows), func(row int, _ int) bool {
		return predicate(row)
	}))
}

// Matrix returns the values of numeric columns as rows of floats.
func (t *Table) Matrix(names []string) ([][]float64, error) {
	columns := make([]*Column, len(names))
	for j, name := range names {
		column, err := t.Column(name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if !column.Kind.Numeric() {
			return nil, errors.NotValidf("%s column %s as feature", column.Kind, name)
		}
		columns[j] = column
	}
	rows := make([][]float64, t.numRows)
	for i := range rows {
		rows[i] = make([]float64, len(columns))
		for j, column := range columns {
			rows[i][j] = column.Float(i)
		}
	}
	return rows, nil
}

// Head renders the first n rows as a text table.
func (t *Table) Head(n int) string {
	var builder strings.Builder
	table := tablewriter.NewWriter(&builder)
	table.Header(lo.ToAnySlice(t.ColumnNames())...)
	for i := 0; i < min(n, t.numRows); i++ {
		_ = table.Append(lo.Map(t.columns, func(c *Column, _ int) string { return c.Text(i) }))
	}
	_ = table.Render()
	return builder.String()
}
