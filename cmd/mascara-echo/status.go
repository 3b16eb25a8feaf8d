package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/161chihuahuas/mascara/internal/daemonutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the daemon is running",
	RunE:  runStatus,
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Ask the running daemon to exit",
	RunE:  runShutdown,
}

func stateDirOrExit() string {
	dir, err := stateDir()
	if err != nil {
		return ""
	}
	return dir
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := stateDirOrExit()
	info, err := daemonutil.ReadLockFile(dir, instance)
	if err != nil {
		return err
	}
	if info == nil || daemonutil.IsStale(info) {
		fmt.Println("not running")
		return nil
	}
	fmt.Printf("running: pid %d, addr %s\n", info.PID, info.Addr)
	return nil
}

func runShutdown(cmd *cobra.Command, args []string) error {
	client, err := dial()
	if err != nil {
		return fmt.Errorf("mascara-echo: connect: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = client.Invoke(ctx, "shutdown")
	return err
}
