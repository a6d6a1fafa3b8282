package bridge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/android-cli/internal/core"
	"github.com/mj1618/android-cli/internal/logging"
	"github.com/mj1618/android-cli/internal/model"
	"go.uber.org/zap"
)

// SnapshotDiff captures the hierarchy and reports what was added, removed
// or changed since the last saved snapshot, then saves the new one. The
// first call only records a baseline.
func (d *Dispatcher) SnapshotDiff(ctx context.Context) Outcome {
	if d.snapshots == nil {
		return fail("ERROR: snapshot diff needs a snapshot store.", core.New(core.KindConfig, "snapshot diff", "no snapshot store configured"))
	}
	logOp(ctx, "snapshot_diff", zap.String("store", d.snapshots.Path()))

	prev, found, err := d.snapshots.Load()
	if err != nil {
		logging.WithContext(ctx).Warn("discarding unreadable snapshot", zap.Error(err))
		found = false
	}

	tree, err := d.acquire(ctx)
	if err != nil {
		return failure(err)
	}
	curr := model.Flatten(tree)
	d.remember(ctx, curr)

	if !found {
		return ok(fmt.Sprintf("No previous snapshot. Saved %d nodes as the baseline.", len(curr)), model.TreeDiff{})
	}
	diff := model.DiffTrees(prev, curr)
	return ok(renderDiff(diff), diff)
}

// remember saves nodes as the latest snapshot. Failures only cost the
// next diff its baseline, so they are logged and dropped.
func (d *Dispatcher) remember(ctx context.Context, nodes []model.FlatNode) {
	if d.snapshots == nil {
		return
	}
	if err := d.snapshots.Save(nodes); err != nil {
		logging.WithContext(ctx).Warn("failed to save snapshot", zap.Error(err))
	}
}

func renderDiff(diff model.TreeDiff) string {
	var lines []string
	for _, n := range diff.Added {
		lines = append(lines, "+ "+n.Describe()+boundsSuffix(n.Bounds))
	}
	for _, n := range diff.Removed {
		lines = append(lines, "- "+n.Describe())
	}
	for _, c := range diff.Changed {
		names := make([]string, 0, len(c.Changes))
		for name := range c.Changes {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s %q -> %q", name, c.Changes[name][0], c.Changes[name][1])
		}
		lines = append(lines, "~ "+c.Node.Describe()+": "+strings.Join(parts, ", "))
	}
	summary := fmt.Sprintf("%d added, %d removed, %d changed, %d unchanged.",
		len(diff.Added), len(diff.Removed), len(diff.Changed), diff.UnchangedCount)
	if diff.Empty() {
		return "No changes. " + summary
	}
	return strings.Join(append(lines, summary), "\n")
}

func boundsSuffix(b string) string {
	if b == "" {
		return ""
	}
	return " " + b
}
