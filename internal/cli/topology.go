package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaminalder/morabaraba/internal/domain"
)

// TopologyResult is the static board description.
type TopologyResult struct {
	Positions int           `json:"positions"`
	Adjacency [][]int       `json:"adjacency"`
	Mills     []domain.Mill `json:"mills"`
}

// NewTopologyCommand creates the topology command.
func NewTopologyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "Print the board adjacency and mill tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adj := domain.Topology()
			res := TopologyResult{Positions: domain.Positions, Adjacency: adj[:], Mills: domain.Mills()}
			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, CLIResponse{Status: "ok", Data: res})
			}
			fmt.Fprintln(out, "adjacency:")
			for pos, ns := range res.Adjacency {
				fmt.Fprintf(out, "  %2d: %v\n", pos, ns)
			}
			fmt.Fprintln(out, "mills:")
			for _, m := range res.Mills {
				fmt.Fprintf(out, "  %v\n", m[:])
			}
			return nil
		},
	}
}
