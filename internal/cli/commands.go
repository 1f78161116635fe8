package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arko-chat/geobridge/internal/credentials"
	"github.com/arko-chat/geobridge/internal/value"
)

var callTimeout time.Duration

func init() {
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyClearCmd)

	callCmd.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "How long to wait for the call to settle")
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the commands the bridge accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		a, err := e.newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, name := range a.Dispatcher.Commands() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call <command> [args-json]",
	Short: "Run one command in-process and print its outcome",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	callArgs := value.Null()
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &callArgs); err != nil {
			return fmt.Errorf("parse args: %w", err)
		}
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	a, err := e.newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	c := a.Dispatcher.Dispatch(ctx, args[0], callArgs)
	o, err := c.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if o.Rejected {
		return fmt.Errorf("%s rejected: %s", args[0], o.Reason)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(o.Payload)
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the publishable key in the system keyring",
}

var keySetCmd = &cobra.Command{
	Use:   "set <publishable-key>",
	Short: "Store the publishable key used to initialize the SDK",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credentials.StorePublishableKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "publishable key stored")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored publishable key",
	Run: func(cmd *cobra.Command, args []string) {
		credentials.DeletePublishableKey()
		fmt.Fprintln(os.Stderr, "publishable key removed")
	},
}
