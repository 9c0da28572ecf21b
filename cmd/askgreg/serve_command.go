package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"askgreg/internal/api"
	"askgreg/internal/logging"
	"askgreg/internal/preference/sink"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compare-and-choose loop over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if bind != "" {
				rt.cfg.Paths.APIBind = bind
			}
			querier, _ := rt.sink.(sink.Querier)
			srv, err := api.New(api.Options{
				Config:     rt.cfg,
				Controller: rt.controller,
				Querier:    querier,
				Logger:     rt.logger,
			})
			if err != nil {
				return err
			}
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())
			if len(rt.generator.Providers()) == 0 {
				logging.WarnWithContext(rt.logger, "no provider has an API key", "no_providers",
					logging.String(logging.FieldErrorHint, "set an api_key under [providers.*] or export OPENAI_API_KEY / GOOGLE_API_KEY / OPENROUTER_API_KEY"),
					logging.String(logging.FieldImpact, "every question will be rejected"),
				)
			}

			<-cmd.Context().Done()
			srv.Stop()
			rt.logger.Info("askgreg server shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind")
	return cmd
}
