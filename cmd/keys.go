package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/dinegate/internal/apikeys"
	"github.com/example/dinegate/internal/config"
	"github.com/example/dinegate/internal/db"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage partner API keys",
	}
	cmd.AddCommand(newKeysGenerateCmd())
	cmd.AddCommand(newKeysListCmd())
	cmd.AddCommand(newKeysRevokeCmd())
	return cmd
}

func withRegistry(fn func(ctx context.Context, reg *apikeys.Registry) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(ctx, apikeys.NewRegistry(apikeys.NewPostgresStore(d)))
}

func newKeysGenerateCmd() *cobra.Command {
	var (
		service string
		group   string
		perms   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new API key (the secret is printed once and never again)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := apikeys.ParsePermissions(perms)
			if err != nil {
				return err
			}
			return withRegistry(func(ctx context.Context, reg *apikeys.Registry) error {
				key, err := reg.Generate(ctx, service, group, p)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, key)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "service name the key is issued to")
	cmd.Flags().StringVar(&group, "group", "external", "consumer group")
	cmd.Flags().StringVar(&perms, "permissions", "read", "access tier: read or read_write")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(func(ctx context.Context, reg *apikeys.Registry) error {
				recs, err := reg.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SERVICE\tGROUP\tPERMISSIONS\tACTIVE\tUSES\tLAST USED")
				for _, r := range recs {
					last := "never"
					if r.LastUsed != nil {
						last = r.LastUsed.Format("2006-01-02 15:04")
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\n",
						r.ServiceName, r.ConsumerGroup, r.Permissions, r.Active, r.UsageCount, last)
				}
				return w.Flush()
			})
		},
	}
}

func newKeysRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <key>",
		Short: "Deactivate an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(func(ctx context.Context, reg *apikeys.Registry) error {
				return reg.Revoke(ctx, args[0])
			})
		},
	}
}
