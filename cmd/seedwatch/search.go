package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/FranksOps/seedwatch/internal/bytesize"
	"github.com/FranksOps/seedwatch/internal/config"
	"github.com/FranksOps/seedwatch/internal/extract"
	"github.com/FranksOps/seedwatch/internal/instance"
	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search all configured sites for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := args[0]

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if len(cfg.Sites) == 0 {
				return errors.New("no sites configured")
			}

			logger := newLogger(cfg.Log.Level)
			slog.SetDefault(logger)

			cache, err := newCache(cfg.Cache)
			if err != nil {
				return err
			}
			defer cache.Close()

			store, err := newStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := newFetcher(cfg, cache, logger)
			if err != nil {
				return err
			}

			var insts []*instance.Instance
			for _, site := range cfg.Sites {
				adapter, ok := extract.Lookup(site.Name)
				if !ok {
					logger.Warn("skipping unmapped site", "site", site.Name)
					continue
				}
				inst, err := instance.New(instance.Config{
					Site:    site.Name,
					Cookie:  site.Cookie,
					Adapter: adapter,
					Source:  f,
					Store:   store,
					Logger:  logger,
				})
				if err != nil {
					return err
				}
				insts = append(insts, inst)
			}

			results := make([]stats.SearchResult, len(insts))
			var g errgroup.Group
			for i, inst := range insts {
				g.Go(func() error {
					results[i] = inst.Search(cmd.Context(), keyword)
					return nil
				})
			}
			_ = g.Wait()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SITE\tTITLE\tSIZE\tSEEDERS\tLEECHERS\tSNATCHES")
			total := 0
			for _, result := range results {
				for _, t := range result.Torrents {
					total++
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
						t.Site, t.Title, bytesize.Format(t.Size), t.Seeders, t.Leechers, t.Snatches)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("%d torrents from %d sites\n", total, len(results))
			return nil
		},
	}
}
