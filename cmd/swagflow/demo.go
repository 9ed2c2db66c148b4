package main

import (
	"fmt"
	"time"

	"swagflow/internal/infrastructure/demostore"

	"github.com/spf13/cobra"
)

func newDemoCmd(root *rootFlags) *cobra.Command {
	var (
		addr  string
		opts  demostore.Options
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve the offline Swag Labs demo store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.container(cmd, nil)
			if err != nil {
				return err
			}
			defer c.Close()

			opts.RequestLog = !quiet
			store, err := demostore.New(opts, c.Logger)
			if err != nil {
				return err
			}
			return store.Serve(cmd.Context(), addr, func(baseURL string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Demo store listening on %s (Ctrl+C to stop)\n", baseURL)
				fmt.Fprintf(cmd.OutOrStdout(), "Run against it with: swagflow run --base-url %s\n", baseURL)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().DurationVar(&opts.RenderDelay, "render-delay", 0, "delay before the product list renders")
	cmd.Flags().DurationVar(&opts.GlitchDelay, "glitch-delay", 3*time.Second, "login delay for performance_glitch_user")
	cmd.Flags().BoolVar(&opts.AlertOnLogin, "alert-on-login", false, "open a JS alert after login")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "disable request logging")
	return cmd
}
