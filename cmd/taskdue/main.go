package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "taskdue",
		Short:   "taskdue - personal task tracker with local reminders",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(
		&a.configPath, "config", "", "path to config file",
	)

	rootCmd.AddCommand(signupCmd(a))
	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(doneCmd(a))
	rootCmd.AddCommand(deleteCmd(a))
	rootCmd.AddCommand(respondCmd(a))
	rootCmd.AddCommand(runCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
