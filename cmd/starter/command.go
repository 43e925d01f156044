// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"io"

	"github.com/z5labs/starter"
	"github.com/z5labs/starter/appbuilder"
	"github.com/z5labs/starter/config"
	"github.com/z5labs/starter/server"

	"github.com/spf13/cobra"
)

func newCommand(environ func() []string, out io.Writer) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:          "starter",
		Short:        "Bootstrap the HTTP service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs := []config.Source{server.Defaults()}
			if cfgPath != "" {
				src, err := config.FromFile(cfgPath)
				if err != nil {
					return starter.ConfigReadError{Cause: err}
				}
				srcs = append(srcs, src)
			}
			srcs = append(srcs, config.FromEnviron(environ))

			return starter.Run(cmd.Context(), appbuilder.Recover[server.Config](buildApp(out)), srcs...)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return starter.ConfigReadError{Cause: err}
	})
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML or JSON config file, rendered as a text/template before parsing")
	return cmd
}
