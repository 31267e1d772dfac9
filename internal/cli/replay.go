package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay a scripted game and print the final state",
		Long: `Replay a YAML script of clicks against a fresh game.

Each step is a board position (0-23) or the word "reset". Illegal clicks are
ignored exactly as they would be in play. When the script has an "expect"
block, the final state is checked against it.

Exit codes:
  0 - Script replayed and all expectations met
  1 - At least one expectation failed
  2 - Command error (unreadable or invalid script)

Examples:
  morabaraba replay opening.yaml
  morabaraba replay opening.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command, path string) error {
	sc, err := LoadScript(path)
	if err != nil {
		return commandError(err, "failed to load script %s", path)
	}
	res := sc.Run()

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		status := "ok"
		if len(res.Failures) > 0 {
			status = "failed"
		}
		if err := writeJSON(out, CLIResponse{Status: status, Data: res, Errors: res.Failures}); err != nil {
			return commandError(err, "failed to write output")
		}
	} else {
		if res.Name != "" {
			fmt.Fprintf(out, "%s\n\n", res.Name)
		}
		renderState(out, res.State)
		fmt.Fprintf(out, "steps:    %d applied, %d ignored\n", res.Applied, res.Ignored)
		for _, f := range res.Failures {
			fmt.Fprintf(out, "FAIL %s\n", f)
		}
	}

	if len(res.Failures) > 0 {
		return expectationsFailed(len(res.Failures))
	}
	return nil
}
