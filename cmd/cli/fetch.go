package main

import (
	"drawlab/adapters/report"

	"github.com/spf13/cobra"
)

func newFetchCmd(env *cliEnv) *cobra.Command {
	var url, dataPath, numbersField, orderField string
	var newestFirst bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Analyze the draw history served by a JSON results feed",
		Long: `Fetch reads the feed named by FEED_URL (or --url), extracts one draw per
item and analyzes the result like the analyze command does.`,
		Args: cobra.NoArgs,
	}
	engineF := addEngineFlags(cmd)
	outF := addOutputFlags(cmd)
	cmd.Flags().StringVar(&url, "url", "", "feed URL (overrides FEED_URL)")
	cmd.Flags().StringVar(&dataPath, "data-path", "", "gjson path to the array of draws")
	cmd.Flags().StringVar(&numbersField, "numbers-field", "", "field holding the numbers of each draw")
	cmd.Flags().StringVar(&orderField, "order-field", "", "field to sort draws by, oldest first")
	cmd.Flags().BoolVar(&newestFirst, "newest-first", false, "the feed lists the newest draw first")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		engine, err := env.engine(cmd, engineF)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(outF.format)
		if err != nil {
			return err
		}

		feedCfg := &env.config.Feed
		if cmd.Flags().Changed("url") {
			feedCfg.URL = url
		}
		if cmd.Flags().Changed("data-path") {
			feedCfg.DataPath = dataPath
		}
		if cmd.Flags().Changed("numbers-field") {
			feedCfg.NumbersField = numbersField
		}
		if cmd.Flags().Changed("order-field") {
			feedCfg.OrderField = orderField
		}
		if cmd.Flags().Changed("newest-first") {
			feedCfg.NewestFirst = newestFirst
		}

		c, err := env.openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		reader, err := c.FeedReader()
		if err != nil {
			return err
		}
		return runAnalysis(cmd, c, reader, engine, format, outF.out)
	}
	return cmd
}
