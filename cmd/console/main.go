package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:   "console",
		Short: "Client console for the inventory dashboard API",
	}
	root.AddCommand(newServeCommand(), newLoginCommand(), newLogoutCommand(), newWhoamiCommand())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
