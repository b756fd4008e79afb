package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/lazypower/neurodose/internal/store"
	"github.com/spf13/cobra"
)

var (
	reportAt   string
	seriesFrom string
	seriesTo   string
	seriesStep time.Duration
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show active concentration of every compound",
	RunE:  runLevels,
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print a concentration time series",
	Long:  "Print sampled concentrations. The default window runs from the earliest dose to 24h after the latest, hourly.",
	RunE:  runSeries,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate thresholds, interactions and scores",
	RunE:  runCheck,
}

func init() {
	levelsCmd.Flags().StringVar(&reportAt, "at", "", "Evaluation time (default now)")
	checkCmd.Flags().StringVar(&reportAt, "at", "", "Evaluation time (default now)")
	seriesCmd.Flags().StringVar(&seriesFrom, "from", "", "Window start")
	seriesCmd.Flags().StringVar(&seriesTo, "to", "", "Window end (inclusive)")
	seriesCmd.Flags().DurationVar(&seriesStep, "step", engine.DefaultStep, "Sampling interval")
}

func runLevels(cmd *cobra.Command, args []string) error {
	at, err := parseWhen(reportAt, time.Now())
	if err != nil {
		return err
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	l, err := e.db.LoadLedger()
	if err != nil {
		return err
	}
	levels, err := e.engine.TotalConcentrationAllCompounds(at, l)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "COMPOUND\tACTIVE MG\t%% OF MAX\n")
	for _, c := range e.engine.Catalog().List() {
		mg := levels[c.ID]
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\n", c.ID, humanize.FtoaWithDigits(mg, 2), mg/c.MaxDailyDoseMg*100)
	}
	return tw.Flush()
}

func runSeries(cmd *cobra.Command, args []string) error {
	now := time.Now()
	var win engine.Window
	var err error
	if seriesFrom != "" {
		if win.Start, err = parseWhen(seriesFrom, now); err != nil {
			return err
		}
	}
	if seriesTo != "" {
		if win.End, err = parseWhen(seriesTo, now); err != nil {
			return err
		}
	}
	win.Step = seriesStep

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	l, err := e.db.LoadLedger()
	if err != nil {
		return err
	}
	seq, err := e.engine.Sample(l, win)
	if err != nil {
		return err
	}

	ids := e.engine.Catalog().IDs()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "TIME\t%s\t\n", strings.Join(ids, "\t"))
	n := 0
	for s := range seq {
		row := make([]string, 0, len(ids))
		for _, id := range ids {
			row = append(row, humanize.FtoaWithDigits(s.Levels[id], 1))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", s.Time.Local().Format("Jan 2 15:04"), strings.Join(row, "\t"))
		n++
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No doses logged.")
		return nil
	}
	return tw.Flush()
}

func runCheck(cmd *cobra.Command, args []string) error {
	at, err := parseWhen(reportAt, time.Now())
	if err != nil {
		return err
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	defaultSleep, err := e.cfg.SleepSchedule()
	if err != nil {
		return err
	}
	settings := store.Settings{DB: e.db, DefaultSleep: defaultSleep}

	l, err := e.db.LoadLedger()
	if err != nil {
		return err
	}
	stored, err := settings.ListThresholds()
	if err != nil {
		return err
	}
	thresholds, err := e.engine.EffectiveThresholds(stored)
	if err != nil {
		return err
	}
	warnings, err := e.engine.EvaluateThresholds(l, thresholds, at)
	if err != nil {
		return err
	}
	levels, err := e.engine.TotalConcentrationAllCompounds(at, l)
	if err != nil {
		return err
	}
	sleep, err := settings.GetSleepSchedule()
	if err != nil {
		return err
	}
	scores, err := e.engine.Score(levels, at, sleep)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "## Check at %s\n\n", at.Local().Format("Mon Jan 2 15:04"))
	if len(warnings) == 0 {
		fmt.Fprintln(out, "All compounds within thresholds.")
	}
	for _, w := range warnings {
		verb := "below minimum"
		if w.Kind == engine.AboveMaximum {
			verb = "above maximum"
		}
		fmt.Fprintf(out, "- %s %s: %s mg (threshold %s mg)\n",
			w.CompoundID, verb, humanize.FtoaWithDigits(w.ValueMg, 1), humanize.Ftoa(w.ThresholdMg))
	}

	interactions := e.engine.Interactions(levels)
	if len(interactions) > 0 {
		fmt.Fprintln(out, "\n## Interactions")
		for _, iw := range interactions {
			fmt.Fprintf(out, "- %s + %s: %s\n", iw.CompoundID, iw.OtherID, iw.Note)
		}
	}

	var active []string
	for id, mg := range levels {
		if mg > 0 {
			active = append(active, id)
		}
	}
	slices.Sort(active)

	fmt.Fprintln(out, "\n## Scores")
	fmt.Fprintf(out, "- active: %s\n", strings.Join(active, ", "))
	fmt.Fprintf(out, "- synergy: %d\n", scores.Synergy)
	fmt.Fprintf(out, "- tolerance risk: %d\n", scores.ToleranceRisk)
	fmt.Fprintf(out, "- circadian alignment: %g (sleep %s-%s)\n", scores.CircadianAlignment, sleep.Start, sleep.End)
	return nil
}
