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
	"os"
	"strconv"
	"strings"

	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/dataset"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cliCommand.AddCommand(inspectCommand)
	inspectCommand.Flags().Int("genres", 10, "number of most frequent genres to show")
}

var inspectCommand = &cobra.Command{
	Use:   "inspect",
	Short: "Show shapes and column types of the datasets",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := loadConfig(cmd)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		loader := dataset.NewLoader(conf.Dataset.GetPaths(), log.Logger())
		datasets, err := loader.LoadAll()
		if err != nil {
			log.Logger().Fatal("failed to load datasets", zap.Error(err))
		}
		merged, err := dataset.Merge(datasets.Ratings, datasets.Movies, dataset.MovieId)
		if err != nil {
			log.Logger().Fatal("failed to merge datasets", zap.Error(err))
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("dataset", "rows", "columns", "schema")
		for _, named := range []lo.Tuple2[string, *dataset.Table]{
			lo.T2("movies", datasets.Movies),
			lo.T2("ratings", datasets.Ratings),
			lo.T2("tags", datasets.Tags),
			lo.T2("links", datasets.Links),
			lo.T2("merged", merged),
		} {
			rows, columns := named.B.Shape()
			_ = table.Append([]string{named.A, strconv.Itoa(rows), strconv.Itoa(columns), schema(named.B)})
		}
		_ = table.Render()

		n, _ := cmd.Flags().GetInt("genres")
		if n <= 0 {
			return
		}
		genres, err := dataset.CountGenres(datasets.Movies)
		if err != nil {
			log.Logger().Fatal("failed to count genres", zap.Error(err))
		}
		table = tablewriter.NewWriter(os.Stdout)
		table.Header("genre", "movies")
		for _, id := range genres.MostFrequent(n) {
			name, _ := genres.Name(id)
			_ = table.Append([]string{name, strconv.Itoa(genres.Freq(id))})
		}
		_ = table.Render()
	},
}

func schema(table *dataset.Table) string {
	return strings.Join(lo.Map(table.Columns(), func(c *dataset.Column, _ int) string {
		return c.Name + ":" + c.Kind.String()
	}), " ")
}
