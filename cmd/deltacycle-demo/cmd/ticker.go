package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deltacycle/deltacycle"
)

var (
	tickerCount  int
	tickerPeriod int64
)

var tickerCmd = &cobra.Command{
	Use:   "ticker",
	Short: "Run a periodic timer for a fixed number of ticks and print each fire.",
	Run: func(cmd *cobra.Command, args []string) {
		sim := deltacycle.NewSimulator(deltacycle.WithName("deltacycle-demo"))
		period := deltacycle.Milliseconds(tickerPeriod)

		deltacycle.Run(sim, func(s *deltacycle.Scheduler) struct{} {
			s.NewPeriodicTimer(period, func(t *deltacycle.SimTimer) {
				fmt.Printf("tick %d at %s\n", t.Tick(), sim.Elapsed())

				if int(t.Tick()) >= tickerCount {
					t.Cancel()
				}
			})
			return struct{}{}
		})

		if err := sim.FlushTimers(); err != nil {
			fmt.Println(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tickerCmd)
	tickerCmd.Flags().IntVar(&tickerCount, "count", 10, "number of ticks to run")
	tickerCmd.Flags().Int64Var(&tickerPeriod, "period-ms", 100, "period between ticks, in milliseconds")
}
