package main

import (
	"github.com/spf13/cobra"
)

var instance string

var rootCmd = &cobra.Command{
	Use:   "mascara-echo",
	Short: "Demo daemon and client for the mascara protocol engine",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&instance, "instance", "mascara-echo", "daemon instance name (selects the lock/socket/log files)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(shutdownCmd)
}
