package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/FranksOps/seedwatch/internal/bytesize"
	"github.com/FranksOps/seedwatch/internal/config"
	"github.com/FranksOps/seedwatch/internal/storage"
	"github.com/spf13/cobra"
)

func latestCommand() *cobra.Command {
	var history int

	cmd := &cobra.Command{
		Use:   "latest [site]",
		Short: "Show persisted statistics without touching the network",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			store, err := newStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SITE\tUSER\tUPLOAD\tDOWNLOAD\tSEEDING\tBONUS\tUPDATED")

			if len(args) == 1 && history > 1 {
				snaps, err := store.History(cmd.Context(), storage.Filter{Site: args[0], Limit: history})
				if err != nil {
					return err
				}
				for _, snap := range snaps {
					printSnapshot(w, snap)
				}
				return w.Flush()
			}

			sites := make([]string, 0, len(cfg.Sites))
			if len(args) == 1 {
				sites = append(sites, args[0])
			} else {
				for _, site := range cfg.Sites {
					sites = append(sites, site.Name)
				}
			}

			for _, site := range sites {
				snap, err := store.Latest(cmd.Context(), site)
				if err != nil {
					return err
				}
				if snap == nil {
					fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t(never refreshed)\n", site)
					continue
				}
				printSnapshot(w, snap)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&history, "history", 1, "number of snapshots to show for a single site")
	return cmd
}

func printSnapshot(w *tabwriter.Writer, snap *storage.Snapshot) {
	updated := time.Unix(snap.Stats.UpdateTime, 0).Format("2006-01-02 15:04")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d (%s)\t%.1f\t%s\n",
		snap.Site,
		snap.Stats.Username,
		bytesize.Format(snap.Stats.Upload),
		bytesize.Format(snap.Stats.Download),
		snap.Stats.Seeding,
		bytesize.Format(snap.Stats.SeedingSize),
		snap.Stats.Bonus,
		updated,
	)
}
