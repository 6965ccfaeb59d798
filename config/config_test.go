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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorse-io/filmify/model"
	"github.com/gorse-io/filmify/model/regression"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("config.toml")
	assert.NoError(t, err)
	// the template documents the default values
	assert.Equal(t, GetDefaultConfig(), config)

	// [dataset]
	assert.Equal(t, filepath.Join("data", "movies.csv"), config.Dataset.MoviesPath())
	assert.Equal(t, filepath.Join("data", "ratings.csv"), config.Dataset.RatingsPath())
	assert.Equal(t, filepath.Join("data", "tags.csv"), config.Dataset.TagsPath())
	assert.Equal(t, filepath.Join("data", "links.csv"), config.Dataset.LinksPath())
	assert.Equal(t, config.Dataset.RatingsPath(), config.Dataset.GetPaths().Ratings)
	// [split]
	assert.Equal(t, 0.2, config.Split.TestRatio)
	assert.Equal(t, int64(42), config.Split.RandomState)
	// [model]
	assert.Equal(t, regression.TypeRandomForest, config.Model.Type)
	assert.Equal(t, 100, config.Model.NEstimators)
	// [cache]
	assert.False(t, config.Cache.Enable)
	assert.Equal(t, time.Hour, config.Cache.TTL)
	// [server]
	assert.Equal(t, 8000, config.Server.Port)
}

func TestSetDefault(t *testing.T) {
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
[dataset]
dir = "/srv/movielens"
movies = "/tmp/movies.csv"

[model]
type = "linear"
reg = 0.5

[cache]
enable = true
ttl = "90s"
`), 0644)
	assert.NoError(t, err)
	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/movies.csv", config.Dataset.MoviesPath())
	assert.Equal(t, filepath.Join("/srv/movielens", "ratings.csv"), config.Dataset.RatingsPath())
	assert.Equal(t, regression.TypeLinear, config.Model.Type)
	assert.True(t, config.Cache.Enable)
	assert.Equal(t, 90*time.Second, config.Cache.TTL)
	// unset keys keep defaults
	assert.Equal(t, 10, config.Recommend.TopN)

	m, err := config.Model.NewRegressor()
	assert.NoError(t, err)
	assert.IsType(t, &regression.Linear{}, m)
	assert.Equal(t, 0.5, m.GetParams()[model.Reg])
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

type environmentVariable struct {
	key   string
	value string
}

func TestBindEnv(t *testing.T) {
	variables := []environmentVariable{
		{"FILMIFY_DATASET_DIR", "/data/ml-latest-small"},
		{"FILMIFY_SPLIT_TEST_RATIO", "0.25"},
		{"FILMIFY_MODEL_N_ESTIMATORS", "12"},
		{"FILMIFY_MODEL_JOBS", "4"},
		{"FILMIFY_RECOMMEND_TOP_N", "5"},
		{"FILMIFY_CACHE_ENABLE", "true"},
		{"FILMIFY_CACHE_TTL", "10m"},
		{"FILMIFY_SERVER_HOST", "127.0.0.1"},
		{"FILMIFY_SERVER_PORT", "9000"},
	}
	for _, variable := range variables {
		t.Setenv(variable.key, variable.value)
	}

	config, err := LoadConfig("config.toml")
	assert.NoError(t, err)
	assert.Equal(t, "/data/ml-latest-small", config.Dataset.Dir)
	assert.Equal(t, 0.25, config.Split.TestRatio)
	assert.Equal(t, 12, config.Model.NEstimators)
	assert.Equal(t, 4, config.Model.Jobs)
	assert.Equal(t, 5, config.Recommend.TopN)
	assert.True(t, config.Cache.Enable)
	assert.Equal(t, 10*time.Minute, config.Cache.TTL)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9000, config.Server.Port)

	// check default values
	assert.Equal(t, 1, config.Model.MinSamplesLeaf)
	assert.Equal(t, 4, config.Model.GetFitConfig().Jobs)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, GetDefaultConfig().Validate())

	config := GetDefaultConfig()
	config.Split.TestRatio = 1
	err := config.Validate()
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "split.test_ratio")

	config = GetDefaultConfig()
	config.Model.Type = "gradient_boosting"
	config.Model.NEstimators = 0
	err = config.Validate()
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "model.type")
	assert.Contains(t, err.Error(), "model.n_estimators")

	config = GetDefaultConfig()
	config.Dataset.Movies = ""
	assert.Error(t, config.Validate())

	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[recommend]\ntop_n = 0\n"), 0644))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestModelParams(t *testing.T) {
	config := GetDefaultConfig()
	params := config.Model.GetParams()
	assert.Equal(t, 100, params.GetInt(model.NEstimators, 0))
	assert.Equal(t, int64(42), params.GetInt64(model.RandomState, 0))
	assert.Equal(t, 1.0, params.GetFloat64(model.MaxFeatures, 0))
	m, err := config.Model.NewRegressor()
	assert.NoError(t, err)
	assert.IsType(t, &regression.RandomForest{}, m)
}
