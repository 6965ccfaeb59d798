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

package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/config"
	"github.com/gorse-io/filmify/dataset"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Service builds recommenders from the configured datasets. Without cache,
// every call loads the datasets and retrains the model. With cache, evaluated
// recommenders are reused while the movies and ratings files are unchanged.
type Service struct {
	config *config.Config
	logger *zap.Logger
	// Progress is passed to the fit config of every built pipeline.
	Progress func(done, total int)

	cache     *ttlcache.Cache[uint64, *Recommender]
	mu        sync.Mutex
	closeOnce sync.Once
}

func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = log.Logger()
	}
	s := &Service{config: cfg, logger: logger}
	if cfg.Cache.Enable {
		s.cache = ttlcache.New(
			ttlcache.WithTTL[uint64, *Recommender](cfg.Cache.TTL),
			ttlcache.WithDisableTouchOnHit[uint64, *Recommender](),
		)
		go s.cache.Start()
	}
	return s
}

func (s *Service) Config() *config.Config {
	return s.config
}

// Build loads the datasets and runs split, train and evaluate.
func (s *Service) Build(ctx context.Context) (r *Recommender, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			BuildTotal.WithLabelValues("failure").Inc()
		} else {
			BuildTotal.WithLabelValues("success").Inc()
		}
	}()
	loader := dataset.NewLoader(s.config.Dataset.GetPaths(), s.logger)
	preprocessor, err := dataset.NewPreprocessor(loader, s.logger)
	if err != nil {
		return nil, errors.Trace(err)
	}
	StageSeconds.WithLabelValues("load").Observe(time.Since(start).Seconds())
	estimator, err := s.config.Model.NewRegressor()
	if err != nil {
		return nil, errors.Trace(err)
	}
	fitConfig := s.config.Model.GetFitConfig().
		SetLogger(s.logger).
		SetProgress(s.Progress)
	r = NewRecommender(preprocessor.Merged(), estimator, Options{
		TestRatio:   s.config.Split.TestRatio,
		RandomState: s.config.Split.RandomState,
		TopN:        s.config.Recommend.TopN,
		FitConfig:   fitConfig,
	}, s.logger)
	if err = r.SplitDataset(); err != nil {
		return nil, errors.Trace(err)
	}
	if err = r.TrainModel(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if _, err = r.EvaluateModel(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	s.logger.Info("recommender built",
		zap.Float64("r2", r.Score()),
		zap.Duration("elapsed", time.Since(start)))
	return r, nil
}

func (s *Service) recommender(ctx context.Context) (*Recommender, error) {
	if s.cache == nil {
		return s.Build(ctx)
	}
	// serialize builds so that concurrent misses train once
	s.mu.Lock()
	defer s.mu.Unlock()
	key, err := dataset.Checksum(s.config.Dataset.MoviesPath(), s.config.Dataset.RatingsPath())
	if err != nil {
		return nil, errors.Trace(err)
	}
	if item := s.cache.Get(key); item != nil {
		CacheHitsTotal.Inc()
		return item.Value(), nil
	}
	r, err := s.Build(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.cache.Set(key, r, ttlcache.DefaultTTL)
	return r, nil
}

// Recommend returns the top rated predictions for a user.
func (s *Service) Recommend(ctx context.Context, userId int64) ([]Prediction, error) {
	r, err := s.recommender(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return r.Recommend(ctx, userId)
}

// Evaluate builds a recommender and returns its R² on the test set.
func (s *Service) Evaluate(ctx context.Context) (float64, error) {
	r, err := s.recommender(ctx)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return r.Score(), nil
}

// Invalidate drops all cached recommenders.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.DeleteAll()
	}
}

// CacheLen returns the number of cached recommenders.
func (s *Service) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

func (s *Service) Close() {
	if s.cache != nil {
		s.closeOnce.Do(s.cache.Stop)
	}
}
