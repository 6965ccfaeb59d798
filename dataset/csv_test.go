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
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

const moviesCSV = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
3,"Grumpier Old Men, The (1995)",Comedy|Romance
4,Waiting to Exhale (1995),Comedy|Drama|Romance
`

const ratingsCSV = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.0,964981247
2,2,3.5,1445714835
2,9,5.0,1445714836
3,1,2.5,1260759144
`

const tagsCSV = `userId,movieId,tag,timestamp
2,60756,funny,1445714994
2,60756,Highly quotable,1445714996
`

const linksCSV = `movieId,imdbId,tmdbId
1,0114709,862
2,0113497,8844
3,0113228,
`

func TestReadCSV(t *testing.T) {
	movies, err := ReadCSV(strings.NewReader(moviesCSV))
	assert.NoError(t, err)
	rows, columns := movies.Shape()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3, columns)
	assert.Equal(t, []string{"movieId", "title", "genres"}, movies.ColumnNames())
	title, err := movies.Column(Title)
	assert.NoError(t, err)
	assert.Equal(t, String, title.Kind)
	assert.Equal(t, "Grumpier Old Men, The (1995)", title.Text(2))
	assert.Equal(t, []string{"movieId"}, movies.NumericColumns())

	ratings, err := ReadCSV(strings.NewReader(ratingsCSV))
	assert.NoError(t, err)
	kinds := map[string]Kind{}
	for _, column := range ratings.Columns() {
		kinds[column.Name] = column.Kind
	}
	assert.Equal(t, map[string]Kind{"userId": Int, "movieId": Int, "rating": Float, "timestamp": Int}, kinds)
	rating, _ := ratings.Column(Rating)
	assert.Equal(t, 3.5, rating.Float(2))
}

func TestReadCSVMissingValues(t *testing.T) {
	links, err := ReadCSV(strings.NewReader(linksCSV))
	assert.NoError(t, err)
	imdb, _ := links.Column("imdbId")
	assert.Equal(t, Int, imdb.Kind)
	assert.Equal(t, int64(114709), imdb.Int(0))
	// integers with a missing cell become floats
	tmdb, _ := links.Column("tmdbId")
	assert.Equal(t, Float, tmdb.Kind)
	assert.Equal(t, 862.0, tmdb.Float(0))
	assert.True(t, math.IsNaN(tmdb.Float(2)))
	assert.Equal(t, "862", tmdb.Text(0))

	table, err := ReadCSV(strings.NewReader("a,b\n1,x\n\n2,\n"))
	assert.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
	b, _ := table.Column("b")
	assert.Equal(t, String, b.Kind)
	assert.Equal(t, "", b.Text(1))

	table, err = ReadCSV(strings.NewReader("\ufeffa\n1\n"))
	assert.NoError(t, err)
	assert.True(t, table.HasColumn("a"))
}

func TestReadCSVHeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("userId,movieId,rating\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
	assert.Equal(t, 3, table.NumColumns())
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	assert.ErrorContains(t, err, "record 3")
	_, err = ReadCSV(strings.NewReader("a,b\n1,\"2\n"))
	assert.Error(t, err)
	_, err = ReadCSV(strings.NewReader("a,a\n1,2\n"))
	assert.True(t, errors.Is(err, errors.AlreadyExists))
}
