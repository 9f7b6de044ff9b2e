package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL      string
	sessionPath string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "postboard [command] [flags]",
	Short:         "postboard: read and write posts from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := os.Getenv("POSTBOARD_API")
	if def == "" {
		def = "http://localhost:5000/api"
	}
	RootCmd.PersistentFlags().StringVar(&apiURL, "api", def, "base URL of the postboard API")
	RootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default $POSTBOARD_HOME/session.json or ~/.postboard/session.json)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func loadApp() (*App, error) {
	path := sessionPath
	if path == "" {
		var err error
		if path, err = defaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return NewApp(NewClient(apiURL), NewSessionFile(path))
}

// finish prints the app's status line and turns view errors into a hint.
func finish(cmd *cobra.Command, app *App, err error) error {
	out := cmd.OutOrStdout()
	if errors.Is(err, ErrWrongView) {
		if app.View().loggedIn() {
			return errors.New("already logged in; run `postboard logout` first")
		}
		return errors.New("not logged in; run `postboard login <username>` first")
	}
	renderMessage(out, app.Message, err != nil)
	if err != nil && app.Message == "" {
		return err
	}
	if err != nil {
		return errSilent
	}
	return nil
}

// errSilent marks a failure whose message was already printed.
var errSilent = errors.New("request failed")
