package main

import (
	"fmt"

	"github.com/FranksOps/seedwatch/internal/extract"
	"github.com/spf13/cobra"
)

func sitesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the sites with a built-in adapter",
		Run: func(cmd *cobra.Command, args []string) {
			for _, site := range extract.Sites() {
				a, _ := extract.Lookup(site)
				if a.Searcher != nil {
					fmt.Printf("%s (search)\n", site)
					continue
				}
				fmt.Println(site)
			}
		},
	}
}
