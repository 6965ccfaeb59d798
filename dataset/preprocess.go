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
	"github.com/gorse-io/filmify/base/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	MovieId = "movieId"
	UserId  = "userId"
	Rating  = "rating"
	Title   = "title"
	Genres  = "genres"

	headRows = 5
)

// Preprocessor loads movies and ratings once and joins them on movieId.
type Preprocessor struct {
	movies  *Table
	ratings *Table
	merged  *Table
}

func NewPreprocessor(loader *Loader, logger *zap.Logger) (*Preprocessor, error) {
	if logger == nil {
		logger = log.Logger()
	}
	movies, err := loader.LoadMovies()
	if err != nil {
		return nil, errors.Trace(err)
	}
	logTable(logger, "movies data loaded", movies)
	ratings, err := loader.LoadRatings()
	if err != nil {
		return nil, errors.Trace(err)
	}
	logTable(logger, "ratings data loaded", ratings)
	merged, err := Merge(ratings, movies, MovieId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rows, columns := merged.Shape()
	logger.Info("datasets merged", zap.Int("rows", rows), zap.Int("columns", columns))
	return &Preprocessor{
		movies:  movies,
		ratings: ratings,
		merged:  merged,
	}, nil
}

func (p *Preprocessor) Movies() *Table {
	return p.movies
}

func (p *Preprocessor) Ratings() *Table {
	return p.ratings
}

func (p *Preprocessor) Merged() *Table {
	return p.merged
}

func logTable(logger *zap.Logger, msg string, table *Table) {
	rows, columns := table.Shape()
	logger.Info(msg, zap.Int("rows", rows), zap.Int("columns", columns))
	if ce := logger.Check(zap.DebugLevel, "head"); ce != nil {
		ce.Write(zap.String("table", "\n"+table.Head(headRows)))
	}
}
