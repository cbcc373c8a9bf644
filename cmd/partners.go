package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/dinegate/internal/config"
	"github.com/example/dinegate/internal/health"
)

func newPartnersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partners",
		Short: "Inspect configured external partners",
	}
	cmd.AddCommand(newPartnersPingCmd())
	return cmd
}

func newPartnersPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check reachability of every configured partner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			adapters := buildAdapters(cfg)
			if len(adapters) == 0 {
				return fmt.Errorf("no partner endpoints configured")
			}

			checker := health.NewChecker(adapters, cfg.PartnerTimeout)
			snap := checker.CheckAll(context.Background())

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PARTNER\tHEALTHY\tLATENCY\tERROR")
			for _, a := range adapters {
				res := snap[a.Type()]
				errMsg := "-"
				if res.Error != "" {
					errMsg = res.Error
				}
				fmt.Fprintf(w, "%s\t%t\t%dms\t%s\n", a.Type(), res.Healthy, res.LatencyMS, errMsg)
			}
			return w.Flush()
		},
	}
}
