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
	"cmp"
	"slices"
	"strings"

	"github.com/juju/errors"
)

const noGenres = "(no genres listed)"

// FreqDict assigns dense ids to strings and counts how often each is seen.
type FreqDict struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewFreqDict() *FreqDict {
	return &FreqDict{si: map[string]int{}}
}

func (d *FreqDict) Count() int {
	return len(d.is)
}

// Add counts one occurrence of s and returns its id.
func (d *FreqDict) Add(s string) int {
	if id, ok := d.si[s]; ok {
		d.cnt[id]++
		return id
	}
	id := len(d.is)
	d.si[s] = id
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 1)
	return id
}

func (d *FreqDict) Name(id int) (string, bool) {
	if id < 0 || id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

func (d *FreqDict) Freq(id int) int {
	if id < 0 || id >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}

// MostFrequent returns up to n ids ordered by descending frequency, ties
// broken by first appearance.
func (d *FreqDict) MostFrequent(n int) []int {
	ids := make([]int, len(d.is))
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		return cmp.Compare(d.cnt[b], d.cnt[a])
	})
	return ids[:min(n, len(ids))]
}

// CountGenres counts the pipe separated genres of the movies table.
func CountGenres(movies *Table) (*FreqDict, error) {
	column, err := movies.Column(Genres)
	if err != nil {
		return nil, errors.Trace(err)
	}
	dict := NewFreqDict()
	for i := 0; i < column.Len(); i++ {
		text := column.Text(i)
		if text == "" || text == noGenres {
			continue
		}
		for _, genre := range strings.Split(text, "|") {
			dict.Add(genre)
		}
	}
	return dict, nil
}
