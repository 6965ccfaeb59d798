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
	"github.com/juju/errors"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// Merge inner joins left and right on the column on. Rows follow left order
// and, for each left row, the order of matching right rows. The result holds
// the left columns followed by the right columns except the key; names found
// on both sides get the suffixes _x and _y.
func Merge(left, right *Table, on string) (*Table, error) {
	leftKey, err := left.Column(on)
	if err != nil {
		return nil, errors.Annotate(err, "merge left table")
	}
	rightKey, err := right.Column(on)
	if err != nil {
		return nil, errors.Annotate(err, "merge right table")
	}

	// index right rows by key
	positions := make(map[string][]int, right.NumRows())
	for j := 0; j < right.NumRows(); j++ {
		key := rightKey.Text(j)
		positions[key] = append(positions[key], j)
	}
	var leftIndices, rightIndices []int
	for i := 0; i < left.NumRows(); i++ {
		for _, j := range positions[leftKey.Text(i)] {
			leftIndices = append(leftIndices, i)
			rightIndices = append(rightIndices, j)
		}
	}
	if leftIndices == nil {
		leftIndices, rightIndices = []int{}, []int{}
	}

	columns := make([]*Column, 0, left.NumColumns()+right.NumColumns()-1)
	for _, column := range left.Columns() {
		merged := column.take(leftIndices)
		if column.Name != on && right.HasColumn(column.Name) {
			merged = merged.rename(column.Name + leftSuffix)
		}
		columns = append(columns, merged)
	}
	for _, column := range right.Columns() {
		if column.Name == on {
			continue
		}
		merged := column.take(rightIndices)
		if left.HasColumn(column.Name) {
			merged = merged.rename(column.Name + rightSuffix)
		}
		columns = append(columns, merged)
	}
	table, err := NewTable(columns...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return table, nil
}
