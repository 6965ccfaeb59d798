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
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	movies, err := ReadCSV(strings.NewReader(moviesCSV))
	assert.NoError(t, err)
	ratings, err := ReadCSV(strings.NewReader(ratingsCSV))
	assert.NoError(t, err)
	merged, err := Merge(ratings, movies, MovieId)
	assert.NoError(t, err)
	assert.Equal(t, []string{"userId", "movieId", "rating", "timestamp", "title", "genres"}, merged.ColumnNames())
	// movie 9 has no metadata
	assert.Equal(t, 4, merged.NumRows())
	movieIds, _ := merged.Column(MovieId)
	assert.Equal(t, []int64{1, 3, 2, 1}, []int64{movieIds.Int(0), movieIds.Int(1), movieIds.Int(2), movieIds.Int(3)})

	// every merged row carries the title of its movie
	titles := map[int64]string{}
	movieColumn, _ := movies.Column(MovieId)
	titleColumn, _ := movies.Column(Title)
	for i := 0; i < movies.NumRows(); i++ {
		titles[movieColumn.Int(i)] = titleColumn.Text(i)
	}
	mergedTitles, _ := merged.Column(Title)
	for i := 0; i < merged.NumRows(); i++ {
		assert.Equal(t, titles[movieIds.Int(i)], mergedTitles.Text(i))
	}
}

func TestMergeDuplicates(t *testing.T) {
	left, err := NewTable(
		NewIntColumn("k", []int64{2, 1}),
		NewStringColumn("v", []string{"l2", "l1"}),
	)
	assert.NoError(t, err)
	right, err := NewTable(
		NewFloatColumn("k", []float64{1, 2, 1}),
		NewStringColumn("v", []string{"r1a", "r2", "r1b"}),
		NewIntColumn("w", []int64{10, 20, 30}),
	)
	assert.NoError(t, err)
	merged, err := Merge(left, right, "k")
	assert.NoError(t, err)
	assert.Equal(t, []string{"k", "v_x", "v_y", "w"}, merged.ColumnNames())
	assert.Equal(t, 3, merged.NumRows())
	vx, _ := merged.Column("v_x")
	vy, _ := merged.Column("v_y")
	assert.Equal(t, []string{"l2", "l1", "l1"}, []string{vx.Text(0), vx.Text(1), vx.Text(2)})
	assert.Equal(t, []string{"r2", "r1a", "r1b"}, []string{vy.Text(0), vy.Text(1), vy.Text(2)})
}

func TestMergeEmpty(t *testing.T) {
	left, _ := NewTable(NewIntColumn("k", []int64{1}))
	right, _ := NewTable(NewIntColumn("k", []int64{2}), NewStringColumn("v", []string{"x"}))
	merged, err := Merge(left, right, "k")
	assert.NoError(t, err)
	assert.Equal(t, 0, merged.NumRows())
	assert.Equal(t, []string{"k", "v"}, merged.ColumnNames())

	_, err = Merge(left, right, "missing")
	assert.True(t, errors.Is(err, errors.NotFound))
	other, _ := NewTable(NewIntColumn("j", []int64{1}))
	_, err = Merge(left, other, "k")
	assert.True(t, errors.Is(err, errors.NotFound))
}
