package cmd

import (
	"github.com/mj1618/android-cli/internal/debugrpc"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Call the app's debug endpoint",
	Long: `Send high-level commands to the debug HTTP server built into debug builds of
the app. The port is forwarded with adb on first use. Results are the
endpoint's JSON; an unreachable endpoint is reported as {"ok": false}.
The command exits non-zero whenever the result is not ok.`,
}

// rpcCommand builds a subcommand whose positional arguments (named in
// intArgs, all integers, followed by any string arguments) map onto one
// debug command.
func rpcCommand(use, short string, nargs int, intArgs []string, build func(cmd *cobra.Command, ints []int64, args []string) debugrpc.Command) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ints, err := parseInts(intArgs, args[:len(intArgs)])
			if err != nil {
				return err
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			out := d.Call(cmd.Context(), build(cmd, ints, args[len(intArgs):]))
			if err := emit(out); err != nil {
				return err
			}
			if res, ok := out.Data.(debugrpc.Result); ok && !res.OK() {
				return errReported
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(rpcCmd)

	startCall := rpcCommand("start-call USER_ID", "Start a voice or video call", 1, []string{"USER_ID"},
		func(cmd *cobra.Command, ints []int64, _ []string) debugrpc.Command {
			video, _ := cmd.Flags().GetBool("video")
			return debugrpc.StartCall{UserID: ints[0], Video: video}
		})
	startCall.Flags().Bool("video", false, "Start a video call")

	signIn := rpcCommand("sign-in PHONE CODE", "Sign in with a verification code", 2, nil,
		func(cmd *cobra.Command, _ []int64, args []string) debugrpc.Command {
			hash, _ := cmd.Flags().GetString("hash")
			return debugrpc.SignIn{Phone: args[0], Code: args[1], PhoneCodeHash: hash}
		})
	signIn.Flags().String("hash", "", "phoneCodeHash from send-code (default: the last one the app received)")

	rpcCmd.AddCommand(
		rpcCommand("open-chat USER_ID", "Open the chat with a user", 1, []string{"USER_ID"},
			func(_ *cobra.Command, ints []int64, _ []string) debugrpc.Command {
				return debugrpc.OpenChat{UserID: ints[0]}
			}),
		rpcCommand("send-message USER_ID TEXT", "Send a text message to a user", 2, []string{"USER_ID"},
			func(_ *cobra.Command, ints []int64, args []string) debugrpc.Command {
				return debugrpc.SendMessage{UserID: ints[0], Text: args[0]}
			}),
		startCall,
		rpcCommand("accept-call", "Accept the incoming call", 0, nil,
			func(*cobra.Command, []int64, []string) debugrpc.Command { return debugrpc.AcceptCall{} }),
		rpcCommand("end-call", "End the active call", 0, nil,
			func(*cobra.Command, []int64, []string) debugrpc.Command { return debugrpc.EndCall{} }),
		rpcCommand("state", "Show call status, active chat and current user", 0, nil,
			func(*cobra.Command, []int64, []string) debugrpc.Command { return debugrpc.GetState{} }),
		rpcCommand("open-group CHAT_ID", "Open a group chat", 1, []string{"CHAT_ID"},
			func(_ *cobra.Command, ints []int64, _ []string) debugrpc.Command {
				return debugrpc.OpenGroup{ChatID: ints[0]}
			}),
		rpcCommand("send-code PHONE", "Request a login code (phone without +)", 1, nil,
			func(_ *cobra.Command, _ []int64, args []string) debugrpc.Command {
				return debugrpc.SendCode{Phone: args[0]}
			}),
		signIn,
		rpcCommand("back", "Navigate back inside the app", 0, nil,
			func(*cobra.Command, []int64, []string) debugrpc.Command { return debugrpc.PressBack{} }),
		rpcCommand("home", "Return to the dialog list", 0, nil,
			func(*cobra.Command, []int64, []string) debugrpc.Command { return debugrpc.GoHome{} }),
	)
}
