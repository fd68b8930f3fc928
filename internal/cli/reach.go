package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskgraph/pkg/model"
	"github.com/matzehuels/taskgraph/pkg/reach"
)

// reachCommand prints the lineage of one task.
func (c *CLI) reachCommand() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "reach <task-id> [snapshot.json]",
		Short: "List the tasks and edges connected to a task",
		Long: `List the tasks and edges connected to a task.

Connected means reachable along spawn edges in either direction: the task's
ancestors, its descendants, and every task linked to those. This is the set
the dashboard highlights when the pointer rests on the task.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReach(cmd.Context(), args[0], args[1:], scope)
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "fetch this scope from the configured source instead of reading a file")
	return cmd
}

func (c *CLI) runReach(ctx context.Context, taskID string, args []string, scope string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	snap, err := c.loadSnapshot(ctx, cfg, args, scope)
	if err != nil {
		return err
	}

	m := model.Build(snap)
	if !m.Has(taskID) {
		return fmt.Errorf("task %q is not in the snapshot", taskID)
	}
	edges := make([]reach.Edge, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = reach.Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	hl := reach.Component(taskID, edges)

	fmt.Fprintln(stdout, StyleTitle.Render("Lineage of "+taskID))
	printNewline()
	for _, id := range hl.NodeIDs() {
		t, _ := m.Task(id)
		marker := " "
		if id == taskID {
			marker = StyleHighlight.Render(iconArrow)
		}
		fmt.Fprintf(stdout, "%s %s  %s\n", marker, StyleValue.Render(id), bucketStyle(t.Bucket()).Render(t.Status))
	}
	printNewline()
	printKeyValue("tasks", StyleNumber.Render(fmt.Sprint(len(hl.NodeIDs()))))
	printKeyValue("edges", StyleNumber.Render(fmt.Sprint(len(hl.EdgeIDs()))))
	if ids := hl.EdgeIDs(); len(ids) > 0 {
		printDetail("%s", strings.Join(ids, ", "))
	}
	return nil
}
