package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/wisdom-coach/internal/bootstrap"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one periodic coaching cycle for a user and print the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, _ := cmd.Flags().GetString("user")
			if userID == "" {
				return errors.New("--user is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			app, err := bootstrap.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			session, err := app.Coach.CheckTriggers(cmd.Context(), domain.UserID(userID))
			if session != nil {
				out, mErr := json.MarshalIndent(session, "", "  ")
				if mErr != nil {
					return mErr
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no trigger fired")
			}
			return err
		},
	}
	cmd.Flags().String("user", "", "User id to check.")
	return cmd
}
