package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jaminalder/morabaraba/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Replay expectations not met
	ExitCommandError = 2 // Command error (bad flags, unreadable files, etc.)
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Msg  string
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// commandError reports bad usage or an I/O problem. err may be nil.
func commandError(err error, format string, args ...any) *ExitError {
	return &ExitError{Code: ExitCommandError, Msg: fmt.Sprintf(format, args...), Err: err}
}

// expectationsFailed reports a replay whose final state did not match.
func expectationsFailed(n int) *ExitError {
	return &ExitError{Code: ExitFailure, Msg: fmt.Sprintf("%d expectation(s) failed", n)}
}

// GetExitCode maps err to the process exit code. Errors that carry no code
// exit with ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// CLIResponse is the JSON envelope for command output.
type CLIResponse struct {
	Status string   `json:"status"`           // "ok" or "failed"
	Data   any      `json:"data,omitempty"`   // payload
	Errors []string `json:"errors,omitempty"` // failed expectations
}

func writeJSON(w io.Writer, resp CLIResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

const boardArt = `%s-----%s-----%s
|     |     |
| %s---%s---%s |
| |   |   | |
| | %s-%s-%s | |
%s-%s-%s   %s-%s-%s
| | %s-%s-%s | |
| |   |   | |
| %s---%s---%s |
|     |     |
%s-----%s-----%s
`

// drawOrder lists positions in the order they appear in boardArt.
var drawOrder = [domain.Positions]int{
	0, 1, 2,
	8, 9, 10,
	16, 17, 18,
	7, 15, 23, 19, 11, 3,
	22, 21, 20,
	14, 13, 12,
	6, 5, 4,
}

func cellSymbol(p domain.Player) string {
	switch p {
	case domain.One, domain.Two:
		return p.String()
	default:
		return "."
	}
}

// renderBoard draws the board as ASCII art.
func renderBoard(b domain.Board) string {
	args := make([]any, len(drawOrder))
	for i, pos := range drawOrder {
		args[i] = cellSymbol(b[pos])
	}
	return fmt.Sprintf(boardArt, args...)
}

// renderState writes a human-readable summary of s.
func renderState(w io.Writer, s domain.State) {
	fmt.Fprint(w, renderBoard(s.Board))
	fmt.Fprintf(w, "phase:    %s\n", s.PhaseOf(s.Turn))
	fmt.Fprintf(w, "turn:     player %s\n", s.Turn)
	fmt.Fprintf(w, "player 1: %d in reserve, %d on board\n", s.Reserve.One, s.OnBoard.One)
	fmt.Fprintf(w, "player 2: %d in reserve, %d on board\n", s.Reserve.Two, s.OnBoard.Two)
	if s.Selected != domain.NoPosition {
		fmt.Fprintf(w, "selected: %d\n", s.Selected)
	}
	if s.PendingRemoval {
		mills := make([]string, len(s.Mills))
		for i, m := range s.Mills {
			mills[i] = fmt.Sprint(m[:])
		}
		fmt.Fprintf(w, "removal pending after mill %s\n", strings.Join(mills, ", "))
	}
	if s.Over() {
		fmt.Fprintf(w, "winner:   player %s\n", s.Winner)
	}
}
