package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/jaminalder/morabaraba/internal/domain"
)

// Script is a recorded sequence of clicks to replay against a fresh game.
//
//	name: opening mill
//	steps: [0, 8, 1, 9, 2, reset, 4]
//	expect:
//	  turn: 2
//	  phase: placing
type Script struct {
	Name   string       `yaml:"name"`
	Steps  []Step       `yaml:"steps"`
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Step is either a selected position or a reset.
type Step struct {
	Reset bool
	Pos   int
}

// UnmarshalYAML accepts an integer position or the word "reset".
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: step must be a position or \"reset\"", node.Line)
	}
	if node.Value == "reset" {
		*s = Step{Reset: true}
		return nil
	}
	pos, err := strconv.Atoi(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: step %q must be a position or \"reset\"", node.Line, node.Value)
	}
	*s = Step{Pos: pos}
	return nil
}

// MarshalYAML writes a step back in its short form.
func (s Step) MarshalYAML() (any, error) {
	if s.Reset {
		return "reset", nil
	}
	return s.Pos, nil
}

// Expectation lists optional checks on the state after the last step.
type Expectation struct {
	Turn           *int          `yaml:"turn,omitempty"`
	Winner         *int          `yaml:"winner,omitempty"`
	Phase          string        `yaml:"phase,omitempty"`
	PendingRemoval *bool         `yaml:"pending_removal,omitempty"`
	Reserve        *domain.Tally `yaml:"reserve,omitempty"`
	OnBoard        *domain.Tally `yaml:"on_board,omitempty"`
	Ignored        *int          `yaml:"ignored,omitempty"`
}

var errNoSteps = errors.New("script has no steps")

// LoadScript reads a replay script from path.
func LoadScript(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(b)
}

// ParseScript decodes a replay script.
func ParseScript(b []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, errNoSteps
	}
	return &sc, nil
}

// ReplayResult is the outcome of running a script.
type ReplayResult struct {
	Name     string       `json:"name,omitempty"`
	Applied  int          `json:"applied"`
	Ignored  int          `json:"ignored"`
	State    domain.State `json:"state"`
	Failures []string     `json:"-"`
}

// Run plays the script on a new game.
func (sc *Script) Run() ReplayResult {
	g := domain.New()
	res := ReplayResult{Name: sc.Name}
	for _, st := range sc.Steps {
		if st.Reset {
			g.Reset()
			res.Applied++
			continue
		}
		if g.Select(st.Pos) {
			res.Applied++
		} else {
			res.Ignored++
		}
	}
	res.State = g.Snapshot()
	if sc.Expect != nil {
		res.Failures = sc.Expect.check(res)
	}
	return res
}

func (e *Expectation) check(res ReplayResult) []string {
	var out []string
	s := res.State
	mismatch := func(field string, want, got any) {
		out = append(out, fmt.Sprintf("%s: want %v, got %v", field, want, got))
	}
	if e.Turn != nil && *e.Turn != int(s.Turn) {
		mismatch("turn", *e.Turn, int(s.Turn))
	}
	if e.Winner != nil && *e.Winner != int(s.Winner) {
		mismatch("winner", *e.Winner, int(s.Winner))
	}
	if e.Phase != "" && e.Phase != s.PhaseOf(s.Turn).String() {
		mismatch("phase", e.Phase, s.PhaseOf(s.Turn))
	}
	if e.PendingRemoval != nil && *e.PendingRemoval != s.PendingRemoval {
		mismatch("pending_removal", *e.PendingRemoval, s.PendingRemoval)
	}
	if e.Reserve != nil && *e.Reserve != s.Reserve {
		mismatch("reserve", *e.Reserve, s.Reserve)
	}
	if e.OnBoard != nil && *e.OnBoard != s.OnBoard {
		mismatch("on_board", *e.OnBoard, s.OnBoard)
	}
	if e.Ignored != nil && *e.Ignored != res.Ignored {
		mismatch("ignored", *e.Ignored, res.Ignored)
	}
	return out
}
