package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/neurodose/internal/client"
	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/spf13/cobra"
)

var (
	doseAt       string
	doseNotes    string
	doseForce    bool
	doseCompound string
	doseOffline  bool
)

var doseCmd = &cobra.Command{
	Use:   "dose",
	Short: "Log, list and remove doses",
}

var doseAddCmd = &cobra.Command{
	Use:   "add <compound> <mg>",
	Short: "Log a dose",
	Long:  "Log a dose. Goes through the running server when one answers, otherwise writes the database directly.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDoseAdd,
}

var doseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged doses",
	RunE:  runDoseList,
}

var doseRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a dose",
	Args:  cobra.ExactArgs(1),
	RunE:  runDoseRm,
}

func init() {
	doseAddCmd.Flags().StringVar(&doseAt, "at", "", "When it was taken: RFC3339, HH:MM today, or an offset like -2h")
	doseAddCmd.Flags().StringVar(&doseNotes, "notes", "", "Free-form notes")
	doseAddCmd.Flags().BoolVar(&doseForce, "force", false, "Log even if it exceeds the daily maximum")
	doseListCmd.Flags().StringVarP(&doseCompound, "compound", "c", "", "Only this compound")
	doseCmd.PersistentFlags().BoolVar(&doseOffline, "offline", false, "Write the database directly; a running server will not see the change until restarted")

	doseCmd.AddCommand(doseAddCmd)
	doseCmd.AddCommand(doseListCmd)
	doseCmd.AddCommand(doseRmCmd)
}

func runDoseAdd(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[1], err)
	}
	at, err := parseWhen(doseAt, time.Now())
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var d domain.DoseEvent
	if c := client.New(e.cfg.ServerURL()); !doseOffline && c.Healthy() {
		d, err = c.AddDose(args[0], amount, at, doseNotes, doseForce)
	} else {
		d, err = addDoseDirect(e, args[0], amount, at)
	}
	var adv *engine.DailyMaxAdvisory
	var se *client.StatusError
	if errors.As(err, &adv) || (errors.As(err, &se) && se.Code == http.StatusConflict) {
		return fmt.Errorf("%w (use --force to log anyway)", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "logged %s mg %s at %s (%s)\n",
		humanize.Ftoa(d.AmountMg), d.CompoundID, d.Timestamp.Local().Format("15:04"), d.ID)
	return nil
}

func addDoseDirect(e *env, compoundID string, amount float64, at time.Time) (domain.DoseEvent, error) {
	if !e.engine.Catalog().Has(compoundID) {
		return domain.DoseEvent{}, &domain.UnknownCompoundError{ID: compoundID}
	}
	d, err := domain.NewDose(compoundID, amount, at, doseNotes)
	if err != nil {
		return domain.DoseEvent{}, err
	}
	if !doseForce {
		l, err := e.db.LoadLedger()
		if err != nil {
			return domain.DoseEvent{}, err
		}
		if err := e.engine.CheckDailyMax(l, d); err != nil {
			return domain.DoseEvent{}, err
		}
	}
	if err := e.db.AddDose(d); err != nil {
		return domain.DoseEvent{}, err
	}
	return d, nil
}

func runDoseList(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var doses []domain.DoseEvent
	if doseCompound != "" {
		if !e.engine.Catalog().Has(doseCompound) {
			return &domain.UnknownCompoundError{ID: doseCompound}
		}
		doses, err = e.db.ListDosesByCompound(doseCompound)
	} else {
		doses, err = e.db.ListDoses()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(doses) == 0 {
		fmt.Fprintln(out, "No doses logged.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPOUND\tMG\tTAKEN\tNOTES")
	for _, d := range doses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\t%s\n",
			d.ID, d.CompoundID, humanize.Ftoa(d.AmountMg),
			d.Timestamp.Local().Format("Jan 2 15:04"), humanize.Time(d.Timestamp), d.Notes)
	}
	return tw.Flush()
}

func runDoseRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if c := client.New(e.cfg.ServerURL()); !doseOffline && c.Healthy() {
		err = c.DeleteDose(args[0])
	} else {
		err = e.db.DeleteDose(args[0])
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no dose with id %s", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
	return nil
}
