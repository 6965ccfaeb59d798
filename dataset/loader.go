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
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/gorse-io/filmify/base/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Paths locates the four MovieLens style datasets.
type Paths struct {
	Movies  string
	Ratings string
	Tags    string
	Links   string
}

// Datasets holds all loaded tables.
type Datasets struct {
	Movies  *Table
	Ratings *Table
	Tags    *Table
	Links   *Table
}

// Loader reads datasets from disk. Every call reads the file again.
type Loader struct {
	paths  Paths
	logger *zap.Logger
}

func NewLoader(paths Paths, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = log.Logger()
	}
	return &Loader{paths: paths, logger: logger}
}

func (l *Loader) Paths() Paths {
	return l.paths
}

func (l *Loader) LoadMovies() (*Table, error) {
	return l.load("movies", l.paths.Movies)
}

func (l *Loader) LoadRatings() (*Table, error) {
	return l.load("ratings", l.paths.Ratings)
}

func (l *Loader) LoadTags() (*Table, error) {
	return l.load("tags", l.paths.Tags)
}

func (l *Loader) LoadLinks() (*Table, error) {
	return l.load("links", l.paths.Links)
}

func (l *Loader) LoadAll() (*Datasets, error) {
	var (
		datasets Datasets
		err      error
	)
	if datasets.Movies, err = l.LoadMovies(); err != nil {
		return nil, errors.Trace(err)
	}
	if datasets.Ratings, err = l.LoadRatings(); err != nil {
		return nil, errors.Trace(err)
	}
	if datasets.Tags, err = l.LoadTags(); err != nil {
		return nil, errors.Trace(err)
	}
	if datasets.Links, err = l.LoadLinks(); err != nil {
		return nil, errors.Trace(err)
	}
	return &datasets, nil
}

func (l *Loader) load(name, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", name)
	}
	defer file.Close()
	table, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Annotatef(err, "parse %s", path)
	}
	rows, columns := table.Shape()
	l.logger.Debug("dataset loaded",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int("columns", columns))
	return table, nil
}

// Checksum digests the contents of files. The digest changes whenever any of
// the files changes.
func Checksum(paths ...string) (uint64, error) {
	digest := xxhash.New()
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return 0, errors.Trace(err)
		}
		_, err = io.Copy(digest, file)
		file.Close()
		if err != nil {
			return 0, errors.Trace(err)
		}
		// separate files so that moving bytes across a boundary changes the digest
		if _, err = digest.WriteString(path); err != nil {
			return 0, errors.Trace(err)
		}
		if _, err = digest.Write([]byte{0}); err != nil {
			return 0, errors.Trace(err)
		}
	}
	return digest.Sum64(), nil
}
