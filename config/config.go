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
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/filmify/dataset"
	"github.com/gorse-io/filmify/model"
	"github.com/gorse-io/filmify/model/regression"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the filmify server and CLI.
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Split     SplitConfig     `mapstructure:"split"`
	Model     ModelConfig     `mapstructure:"model"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DatasetConfig locates the CSV files. File names are relative to Dir unless
// they are absolute.
type DatasetConfig struct {
	Dir     string `mapstructure:"dir"`
	Movies  string `mapstructure:"movies" validate:"required"`
	Ratings string `mapstructure:"ratings" validate:"required"`
	Tags    string `mapstructure:"tags" validate:"required"`
	Links   string `mapstructure:"links" validate:"required"`
}

func (config *DatasetConfig) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(config.Dir, name)
}

func (config *DatasetConfig) MoviesPath() string {
	return config.path(config.Movies)
}

func (config *DatasetConfig) RatingsPath() string {
	return config.path(config.Ratings)
}

func (config *DatasetConfig) TagsPath() string {
	return config.path(config.Tags)
}

func (config *DatasetConfig) LinksPath() string {
	return config.path(config.Links)
}

func (config *DatasetConfig) GetPaths() dataset.Paths {
	return dataset.Paths{
		Movies:  config.MoviesPath(),
		Ratings: config.RatingsPath(),
		Tags:    config.TagsPath(),
		Links:   config.LinksPath(),
	}
}

type SplitConfig struct {
	TestRatio   float64 `mapstructure:"test_ratio" validate:"gt=0,lt=1"`
	RandomState int64   `mapstructure:"random_state"`
}

type ModelConfig struct {
	Type            string  `mapstructure:"type" validate:"oneof=random_forest linear"`
	NEstimators     int     `mapstructure:"n_estimators" validate:"gt=0"`
	MaxDepth        int     `mapstructure:"max_depth" validate:"gte=0"`
	MinSamplesSplit int     `mapstructure:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf  int     `mapstructure:"min_samples_leaf" validate:"gte=1"`
	MaxFeatures     float64 `mapstructure:"max_features" validate:"gt=0,lte=1"`
	Reg             float64 `mapstructure:"reg" validate:"gte=0"`
	RandomState     int64   `mapstructure:"random_state"`
	Jobs            int     `mapstructure:"jobs" validate:"gt=0"`
	Verbose         int     `mapstructure:"verbose" validate:"gte=0"`
}

// GetParams returns hyper-parameters of the configured regressor.
func (config *ModelConfig) GetParams() model.Params {
	switch config.Type {
	case regression.TypeLinear:
		return model.Params{
			model.Reg:         config.Reg,
			model.RandomState: config.RandomState,
		}
	default:
		return model.Params{
			model.NEstimators:     config.NEstimators,
			model.MaxDepth:        config.MaxDepth,
			model.MinSamplesSplit: config.MinSamplesSplit,
			model.MinSamplesLeaf:  config.MinSamplesLeaf,
			model.MaxFeatures:     config.MaxFeatures,
			model.RandomState:     config.RandomState,
		}
	}
}

func (config *ModelConfig) GetFitConfig() *regression.FitConfig {
	return regression.NewFitConfig().
		SetJobs(config.Jobs).
		SetVerbose(config.Verbose)
}

// NewRegressor creates an unfitted regressor from the configuration.
func (config *ModelConfig) NewRegressor() (regression.Regressor, error) {
	return regression.New(config.Type, config.GetParams())
}

type RecommendConfig struct {
	TopN int `mapstructure:"top_n" validate:"gt=0"`
}

// CacheConfig controls reuse of evaluated pipelines between requests.
type CacheConfig struct {
	Enable bool          `mapstructure:"enable"`
	TTL    time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Dir:     "data",
			Movies:  "movies.csv",
			Ratings: "ratings.csv",
			Tags:    "tags.csv",
			Links:   "links.csv",
		},
		Split: SplitConfig{
			TestRatio:   0.2,
			RandomState: 42,
		},
		Model: ModelConfig{
			Type:            regression.TypeRandomForest,
			NEstimators:     100,
			MaxDepth:        0,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			MaxFeatures:     1,
			Reg:             0,
			RandomState:     42,
			Jobs:            1,
			Verbose:         10,
		},
		Recommend: RecommendConfig{
			TopN: 10,
		},
		Cache: CacheConfig{
			Enable: false,
			TTL:    time.Hour,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	v.SetDefault("dataset.dir", defaultConfig.Dataset.Dir)
	v.SetDefault("dataset.movies", defaultConfig.Dataset.Movies)
	v.SetDefault("dataset.ratings", defaultConfig.Dataset.Ratings)
	v.SetDefault("dataset.tags", defaultConfig.Dataset.Tags)
	v.SetDefault("dataset.links", defaultConfig.Dataset.Links)
	// [split]
	v.SetDefault("split.test_ratio", defaultConfig.Split.TestRatio)
	v.SetDefault("split.random_state", defaultConfig.Split.RandomState)
	// [model]
	v.SetDefault("model.type", defaultConfig.Model.Type)
	v.SetDefault("model.n_estimators", defaultConfig.Model.NEstimators)
	v.SetDefault("model.max_depth", defaultConfig.Model.MaxDepth)
	v.SetDefault("model.min_samples_split", defaultConfig.Model.MinSamplesSplit)
	v.SetDefault("model.min_samples_leaf", defaultConfig.Model.MinSamplesLeaf)
	v.SetDefault("model.max_features", defaultConfig.Model.MaxFeatures)
	v.SetDefault("model.reg", defaultConfig.Model.Reg)
	v.SetDefault("model.random_state", defaultConfig.Model.RandomState)
	v.SetDefault("model.jobs", defaultConfig.Model.Jobs)
	v.SetDefault("model.verbose", defaultConfig.Model.Verbose)
	// [recommend]
	v.SetDefault("recommend.top_n", defaultConfig.Recommend.TopN)
	// [cache]
	v.SetDefault("cache.enable", defaultConfig.Cache.Enable)
	v.SetDefault("cache.ttl", defaultConfig.Cache.TTL)
	// [server]
	v.SetDefault("server.host", defaultConfig.Server.Host)
	v.SetDefault("server.port", defaultConfig.Server.Port)
}

type configBinding struct {
	key string
	env string
}

func bindEnv(v *viper.Viper) error {
	bindings := []configBinding{
		{"dataset.dir", "FILMIFY_DATASET_DIR"},
		{"dataset.movies", "FILMIFY_DATASET_MOVIES"},
		{"dataset.ratings", "FILMIFY_DATASET_RATINGS"},
		{"split.test_ratio", "FILMIFY_SPLIT_TEST_RATIO"},
		{"split.random_state", "FILMIFY_SPLIT_RANDOM_STATE"},
		{"model.type", "FILMIFY_MODEL_TYPE"},
		{"model.n_estimators", "FILMIFY_MODEL_N_ESTIMATORS"},
		{"model.random_state", "FILMIFY_MODEL_RANDOM_STATE"},
		{"model.jobs", "FILMIFY_MODEL_JOBS"},
		{"recommend.top_n", "FILMIFY_RECOMMEND_TOP_N"},
		{"cache.enable", "FILMIFY_CACHE_ENABLE"},
		{"cache.ttl", "FILMIFY_CACHE_TTL"},
		{"server.host", "FILMIFY_SERVER_HOST"},
		{"server.port", "FILMIFY_SERVER_PORT"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a TOML file, environment variables and
// defaults, in this order of precedence: env, file, defaults. An empty path
// skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.Trace(err)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "read config %s", path)
		}
	}
	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}
