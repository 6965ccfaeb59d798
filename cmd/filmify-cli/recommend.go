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
	"fmt"
	"os"
	"strconv"

	"github.com/gorse-io/filmify/base"
	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/recommend"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cliCommand.AddCommand(recommendCommand)
	recommendCommand.Flags().Int64P("user-id", "u", 0, "identifier of the user")
	recommendCommand.Flags().IntP("top-n", "n", 0, "number of recommendations (default from config)")
	recommendCommand.Flags().Bool("csv", false, "print recommendations as CSV")
	_ = recommendCommand.MarkFlagRequired("user-id")
}

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Train a model and recommend movies for a user",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := loadConfig(cmd)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if n, _ := cmd.Flags().GetInt("top-n"); n > 0 {
			conf.Recommend.TopN = n
		}
		userId, _ := cmd.Flags().GetInt64("user-id")
		service := recommend.NewService(conf, log.Logger())
		service.Progress = newProgress("fitting trees")
		predictions, err := service.Recommend(context.Background(), userId)
		if err != nil {
			log.Logger().Fatal("failed to recommend", zap.Error(err))
		}
		if len(predictions) == 0 {
			fmt.Printf("user %d has no rated movies\n", userId)
			return
		}
		if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
			fmt.Println("movieId,title,predicted_rating")
			for _, prediction := range predictions {
				fmt.Printf("%d,%s,%s\n", prediction.MovieId, base.Escape(prediction.Title),
					strconv.FormatFloat(prediction.PredictedRating, 'f', -1, 64))
			}
			return
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("#", "movieId", "title", "predicted rating")
		for i, prediction := range predictions {
			_ = table.Append([]string{
				strconv.Itoa(i + 1),
				strconv.FormatInt(prediction.MovieId, 10),
				prediction.Title,
				strconv.FormatFloat(prediction.PredictedRating, 'f', 4, 64),
			})
		}
		_ = table.Render()
	},
}
