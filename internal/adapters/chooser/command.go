package chooser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/eleven-am/orchestra/internal/xjson"
)

type commandRequest struct {
	Candidates []interface{} `json:"candidates"`
	Criterion  string        `json:"criterion"`
}

type commandResponse struct {
	SelectedIndex *int `json:"selected_index"`
}

// Command delegates the choice to an external decider program, speaking the
// same stdin/stdout JSON protocol nodes do: a request document in, a
// {"selected_index": n} document out. An LLM-backed chooser plugs in here
// without the engine knowing anything about it.
type Command struct {
	Path   string
	Args   []string
	Logger *slog.Logger
}

func (c *Command) Choose(ctx context.Context, candidates []interface{}, criterion string) (int, error) {
	payload, err := xjson.Marshal(commandRequest{Candidates: candidates, Criterion: criterion})
	if err != nil {
		return 0, fmt.Errorf("cannot serialize chooser request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("chooser timed out: %w", ctx.Err())
		}
		return 0, fmt.Errorf("chooser failed: %w: %s", err, stderr.String())
	}

	var resp commandResponse
	if err := xjson.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return 0, fmt.Errorf("chooser produced malformed output: %w", err)
	}
	if resp.SelectedIndex == nil {
		return 0, fmt.Errorf("chooser did not decide")
	}

	if c.Logger != nil {
		c.Logger.Debug("external chooser decided",
			"selected_index", *resp.SelectedIndex,
			"candidates", len(candidates),
		)
	}

	return *resp.SelectedIndex, nil
}
