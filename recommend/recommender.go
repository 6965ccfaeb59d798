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
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/gorse-io/filmify/base"
	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/common/util"
	"github.com/gorse-io/filmify/dataset"
	"github.com/gorse-io/filmify/model/regression"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/gorse-io/filmify/recommend")

// Prediction is a recommended movie with its predicted rating.
type Prediction struct {
	MovieId         int64   `json:"movieId"`
	Title           string  `json:"title"`
	PredictedRating float64 `json:"predicted_rating"`
}

type Options struct {
	TestRatio   float64
	RandomState int64
	TopN        int
	FitConfig   *regression.FitConfig
}

func DefaultOptions() Options {
	return Options{
		TestRatio:   0.2,
		RandomState: 42,
		TopN:        10,
	}
}

// Recommender runs split, train, evaluate and recommend on a merged table, in
// that order. Every operation fails unless the previous one has succeeded.
type Recommender struct {
	merged    *dataset.Table
	estimator regression.Regressor
	options   Options
	logger    *zap.Logger

	state    State
	train    *dataset.Table
	test     *dataset.Table
	features FeatureSet
	score    float64
}

func NewRecommender(merged *dataset.Table, estimator regression.Regressor, options Options, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = log.Logger()
	}
	if options.TopN <= 0 {
		options.TopN = DefaultOptions().TopN
	}
	if options.FitConfig == nil {
		options.FitConfig = regression.NewFitConfig().SetLogger(logger)
	}
	return &Recommender{
		merged:    merged,
		estimator: estimator,
		options:   options,
		logger:    logger,
		state:     StateInitialized,
		score:     math.NaN(),
	}
}

func (r *Recommender) State() State {
	return r.state
}

func (r *Recommender) FeatureSet() FeatureSet {
	return r.features
}

// Score returns the R² measured on the test set, NaN before evaluation.
func (r *Recommender) Score() float64 {
	return r.score
}

func (r *Recommender) Train() *dataset.Table {
	return r.train
}

func (r *Recommender) Test() *dataset.Table {
	return r.test
}

func (r *Recommender) Estimator() regression.Regressor {
	return r.estimator
}

func (r *Recommender) require(operation string, state State) error {
	if r.state != state {
		return errors.NotValidf("%s in state %s, expected %s", operation, r.state, state)
	}
	return nil
}

func startSpan(ctx context.Context, name string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attributes...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SplitDataset shuffles merged rows with the configured seed and holds out
// ceil(ratio·n) of them for evaluation.
func (r *Recommender) SplitDataset() error {
	if err := r.require("split dataset", StateInitialized); err != nil {
		return errors.Trace(err)
	}
	start := time.Now()
	n := r.merged.NumRows()
	if n == 0 {
		return errors.NotValidf("split an empty dataset")
	}
	numTest := int(math.Ceil(r.options.TestRatio * float64(n)))
	numTrain := n - numTest
	if numTest <= 0 || numTrain <= 0 {
		return errors.NotValidf("split %d rows with test ratio %v", n, r.options.TestRatio)
	}
	perm := base.NewRandomGenerator(r.options.RandomState).Perm(n)
	r.test = r.merged.Take(perm[:numTest])
	r.train = r.merged.Take(perm[numTest:])
	r.state = StateSplit
	StageSeconds.WithLabelValues("split").Observe(time.Since(start).Seconds())
	r.logger.Info("dataset split",
		zap.Int("n_train", numTrain),
		zap.Int("n_test", numTest),
		zap.Int64("random_state", r.options.RandomState))
	return nil
}

// TrainModel fits the estimator on the numeric columns of the train set to
// predict ratings.
func (r *Recommender) TrainModel(ctx context.Context) (err error) {
	if err = r.require("train model", StateSplit); err != nil {
		return errors.Trace(err)
	}
	ctx, span := startSpan(ctx, "train model",
		attribute.String("model", regression.GetModelName(r.estimator)),
		attribute.Int("n_train", r.train.NumRows()))
	defer func() { endSpan(span, err) }()
	start := time.Now()

	target, err := r.train.Column(dataset.Rating)
	if err != nil {
		return errors.Annotate(err, "train model")
	}
	if !target.Kind.Numeric() {
		return errors.NotValidf("%s target column %s", target.Kind, dataset.Rating)
	}
	features := NewFeatureSet(r.train, dataset.Rating)
	if features.Len() == 0 {
		return errors.NotValidf("train model without numeric features")
	}
	x, err := features.Matrix(r.train)
	if err != nil {
		return errors.Trace(err)
	}
	y := make([]float64, target.Len())
	for i := range y {
		y[i] = target.Float(i)
	}
	if err = r.estimator.Fit(ctx, x, y, r.options.FitConfig); err != nil {
		return errors.Annotate(err, "train model")
	}
	r.features = features
	r.state = StateTrained
	StageSeconds.WithLabelValues("train").Observe(time.Since(start).Seconds())
	r.logger.Info("model trained",
		zap.String("model", regression.GetModelName(r.estimator)),
		zap.Stringer("features", features))
	return nil
}

// EvaluateModel scores the trained model on the test set with R².
func (r *Recommender) EvaluateModel(ctx context.Context) (score float64, err error) {
	if err = r.require("evaluate model", StateTrained); err != nil {
		return 0, errors.Trace(err)
	}
	ctx, span := startSpan(ctx, "evaluate model", attribute.Int("n_test", r.test.NumRows()))
	defer func() { endSpan(span, err) }()
	start := time.Now()

	x, err := r.features.Matrix(r.test)
	if err != nil {
		return 0, errors.Trace(err)
	}
	target, err := r.test.Column(dataset.Rating)
	if err != nil {
		return 0, errors.Trace(err)
	}
	y := make([]float64, target.Len())
	for i := range y {
		y[i] = target.Float(i)
	}
	score, err = regression.Score(ctx, r.estimator, x, y, r.options.FitConfig.Jobs)
	if err != nil {
		return 0, errors.Annotate(err, "evaluate model")
	}
	r.score = score
	r.state = StateEvaluated
	StageSeconds.WithLabelValues("evaluate").Observe(time.Since(start).Seconds())
	ModelScore.Set(score)
	span.SetAttributes(attribute.Float64("r2", score))
	r.logger.Info("R^2 score", zap.Float64("score", score))
	return score, nil
}

// Recommend predicts ratings of the movies rated by a user and returns the
// top ones by descending prediction. Ties keep table order. A user without
// ratings gets an empty list.
func (r *Recommender) Recommend(ctx context.Context, userId int64) (predictions []Prediction, err error) {
	if err = r.require("recommend", StateEvaluated); err != nil {
		return nil, errors.Trace(err)
	}
	ctx, span := startSpan(ctx, "recommend", attribute.Int64("user_id", userId))
	defer func() { endSpan(span, err) }()
	start := time.Now()

	users, err := r.merged.Column(dataset.UserId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rows := r.merged.Filter(func(row int) bool {
		return users.Float(row) == float64(userId)
	})
	if rows.NumRows() == 0 {
		r.logger.Debug("user without ratings", zap.Int64("user_id", userId))
		return []Prediction{}, nil
	}
	movies, err := rows.Column(dataset.MovieId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	titles, err := rows.Column(dataset.Title)
	if err != nil {
		return nil, errors.Trace(err)
	}
	x, err := r.features.Matrix(rows)
	if err != nil {
		return nil, errors.Trace(err)
	}
	scores, err := regression.BatchPredict(ctx, r.estimator, x, r.options.FitConfig.Jobs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	order := util.RangeInt(len(scores))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	order = order[:min(r.options.TopN, len(order))]
	predictions = make([]Prediction, len(order))
	for i, row := range order {
		predictions[i] = Prediction{
			MovieId:         movies.Int(row),
			Title:           titles.Text(row),
			PredictedRating: scores[row],
		}
	}
	StageSeconds.WithLabelValues("recommend").Observe(time.Since(start).Seconds())
	return predictions, nil
}

// Run executes the whole pipeline for a user.
func (r *Recommender) Run(ctx context.Context, userId int64) ([]Prediction, error) {
	if err := r.SplitDataset(); err != nil {
		return nil, errors.Trace(err)
	}
	if err := r.TrainModel(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if _, err := r.EvaluateModel(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	return r.Recommend(ctx, userId)
}
