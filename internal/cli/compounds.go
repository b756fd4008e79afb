package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var compoundsCmd = &cobra.Command{
	Use:   "compounds",
	Short: "List known compounds",
	RunE:  runCompounds,
}

func runCompounds(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHALF-LIFE\tBIOAVAIL\tMIN\tMAX/DAY")
	for _, c := range cat.List() {
		fmt.Fprintf(tw, "%s\t%s\t%sh\t%.0f%%\t%s mg\t%s mg\n",
			c.ID, c.DisplayName,
			humanize.Ftoa(c.HalfLifeHours),
			c.Bioavailability*100,
			humanize.Ftoa(c.MinEffectiveConcentrationMg),
			humanize.Ftoa(c.MaxDailyDoseMg),
		)
	}
	return tw.Flush()
}
