// Package matrix expands build matrix axes into cells and runs the stage
// sequence once per cell. Cells share no mutable state and run concurrently
// up to a configured limit; stages inside one cell stay strictly sequential.
package matrix

import "github.com/slipway-ci/slipway/src/config"

// Cell is one point of the OS × tool-version cross-product. Cells are
// created once at pipeline start from static configuration.
type Cell struct {
	OS          string
	ToolVersion string
}

// String renders a cell label for output ("linux/3.11", "3.11", or "default").
func (c Cell) String() string {
	switch {
	case c.OS != "" && c.ToolVersion != "":
		return c.OS + "/" + c.ToolVersion
	case c.OS != "":
		return c.OS
	case c.ToolVersion != "":
		return c.ToolVersion
	}
	return "default"
}

// Env returns the environment the cell binds to every stage command.
func (c Cell) Env() map[string]string {
	env := map[string]string{}
	if c.OS != "" {
		env["SLIPWAY_OS"] = c.OS
	}
	if c.ToolVersion != "" {
		env["SLIPWAY_TOOL_VERSION"] = c.ToolVersion
	}
	return env
}

// Expand computes the cell list from the configured axes.
// Empty axes collapse: no matrix at all yields a single default cell.
func Expand(m config.MatrixConfig) []Cell {
	oses := m.OS
	if len(oses) == 0 {
		oses = []string{""}
	}
	tools := m.Tool
	if len(tools) == 0 {
		tools = []string{""}
	}

	cells := make([]Cell, 0, len(oses)*len(tools))
	for _, o := range oses {
		for _, t := range tools {
			cells = append(cells, Cell{OS: o, ToolVersion: t})
		}
	}
	return cells
}
