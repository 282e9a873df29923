package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/houseoftea/inventory-console/httpclient"
	"github.com/houseoftea/inventory-console/token"
)

func newLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the dashboard API and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			result, err := rt.controller.Login(cmd.Context(), httpclient.Credentials{
				Username: username,
				Password: password,
			})
			if err != nil {
				if message := rt.store.Snapshot().Err; message != "" {
					return fmt.Errorf("%s", message)
				}
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", result.User.Username, result.User.Role)
			if result.Redirect != "" {
				fmt.Printf("home area: %s\n", result.Redirect)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session locally and best-effort on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			landing := rt.controller.Logout(cmd.Context())
			fmt.Printf("logged out, back to %s\n", landing)
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			snapshot := rt.store.Snapshot()
			if snapshot.User == nil {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s <%s> role=%s", snapshot.User.Username, snapshot.User.Email, snapshot.User.Role)
			if branch := snapshot.User.ManagedBranch; branch != nil {
				fmt.Printf(" branch=%s", branch.Name)
			}
			fmt.Println()
			switch {
			case snapshot.IsExpired:
				fmt.Println("session has expired; log in again")
			case token.NewCodec().Expired(snapshot.AccessToken):
				fmt.Println("access token has expired; log in again")
			}
			return nil
		},
	}
}
