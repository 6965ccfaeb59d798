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
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gorse-io/filmify/base"
	"github.com/juju/errors"
)

const maxLineSize = 1 << 20

// ReadCSV reads a comma separated table with a header line. Column types are
// inferred from the cells: integers without missing cells are Int, numbers
// with or without missing cells are Float and anything else is String.
func ReadCSV(r io.Reader) (*Table, error) {
	var (
		header  []string
		records [][]string
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	err := base.ReadLines(scanner, ",", func(i int, fields []string) error {
		if i == 0 {
			fields[0] = strings.TrimPrefix(fields[0], "\ufeff")
			header = fields
			return nil
		}
		if len(fields) == 1 && fields[0] == "" {
			// blank line
			return nil
		}
		if len(fields) != len(header) {
			return errors.Errorf("record %d: expected %d fields, found %d", i+1, len(header), len(fields))
		}
		records = append(records, fields)
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if header == nil {
		return nil, errors.NotValidf("csv without header")
	}
	columns := make([]*Column, len(header))
	cells := make([]string, len(records))
	for j, name := range header {
		for i, record := range records {
			cells[i] = record[j]
		}
		columns[j] = inferColumn(name, cells)
	}
	return NewTable(columns...)
}

func inferColumn(name string, cells []string) *Column {
	if len(cells) == 0 {
		return NewStringColumn(name, []string{})
	}
	// try integers
	ints := make([]int64, len(cells))
	isInt := true
	for i, cell := range cells {
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			isInt = false
			break
		}
		ints[i] = v
	}
	if isInt {
		return NewIntColumn(name, ints)
	}
	// try floats, empty cells are missing
	floats := make([]float64, len(cells))
	isFloat := true
	for i, cell := range cells {
		if cell == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			isFloat = false
			break
		}
		floats[i] = v
	}
	if isFloat {
		return NewFloatColumn(name, floats)
	}
	return NewStringColumn(name, append([]string(nil), cells...))
}
