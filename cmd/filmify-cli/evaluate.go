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

package main

import (
	"context"
	"os"
	"strconv"

	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/model/regression"
	"github.com/gorse-io/filmify/recommend"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cliCommand.AddCommand(evaluateCommand)
	evaluateCommand.Flags().String("model", "", "override the regressor type (random_forest or linear)")
}

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Train a model and report R² on the held out ratings",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := loadConfig(cmd)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if modelType, _ := cmd.Flags().GetString("model"); modelType != "" {
			conf.Model.Type = modelType
			if err = conf.Validate(); err != nil {
				log.Logger().Fatal("invalid model", zap.Error(err))
			}
		}
		service := recommend.NewService(conf, log.Logger())
		service.Progress = newProgress("fitting trees")
		r, err := service.Build(context.Background())
		if err != nil {
			log.Logger().Fatal("failed to evaluate", zap.Error(err))
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("model", "params", "train", "test", "features", "R^2")
		_ = table.Append([]string{
			regression.GetModelName(r.Estimator()),
			r.Estimator().GetParams().ToString(),
			strconv.Itoa(r.Train().NumRows()),
			strconv.Itoa(r.Test().NumRows()),
			r.FeatureSet().String(),
			strconv.FormatFloat(r.Score(), 'f', 6, 64),
		})
		_ = table.Render()
	},
}
