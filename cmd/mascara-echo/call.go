package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/161chihuahuas/mascara"
	"github.com/161chihuahuas/mascara/internal/daemonutil"
	"github.com/161chihuahuas/mascara/transport"
)

var callTimeout time.Duration

var callCmd = &cobra.Command{
	Use:   "call <method> [args...]",
	Short: "Invoke a method on the running daemon and print its result",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCall,
}

func init() {
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 10*time.Second, "request timeout")
}

func dial() (*mascara.Client, error) {
	addr := daemonutil.SocketPath(instance)
	return mascara.Connect(transport.UnixClient(), addr)
}

func runCall(cmd *cobra.Command, args []string) error {
	client, err := dial()
	if err != nil {
		return fmt.Errorf("mascara-echo: connect: %w (is the daemon running? try 'mascara-echo serve')", err)
	}
	defer client.Close()

	method := args[0]
	params := make([]interface{}, 0, len(args)-1)
	for _, a := range args[1:] {
		params = append(params, a)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	result, err := client.Invoke(ctx, method, params...)
	if err != nil {
		return fmt.Errorf("mascara-echo: %s: %w", method, err)
	}

	for _, v := range result {
		if stream, ok := v.(*mascara.Stream); ok {
			drainStream(ctx, stream)
			continue
		}
		printResult(v)
	}
	return nil
}

func drainStream(ctx context.Context, stream *mascara.Stream) {
	for {
		v, ok, err := stream.Recv(ctx)
		if err != nil {
			fmt.Printf("stream error: %v\n", err)
			return
		}
		if !ok {
			return
		}
		printResult(v)
	}
}

func printResult(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
