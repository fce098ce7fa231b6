package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long: `Register a user with POST /register.

A rejected registration (for example a duplicate username) exits with
status 2 and prints the server's detail message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.client.Close()

			user, err := a.client.Register(cmd.Context(), username, password)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "User registered successfully:")
			return writeJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username to register")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for the new user")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
