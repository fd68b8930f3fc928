package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/taskgraph/pkg/model"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintStats(t *testing.T) {
	buf := captureStdout(t)
	printStats(4, 3, true)
	printStats(1, 0, false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "4 tasks · 3 edges · cached") {
		t.Errorf("cached line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "1 tasks · 0 edges · fresh") {
		t.Errorf("fresh line = %q", lines[1])
	}
}

func TestPrintHelpers(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("Rendered %d task(s)", 2)
	printWarning("%d back edge(s)", 1)
	printFile("out.svg")
	printKeyValue("tasks", "3")
	printNextStep("Render", "taskgraph render run-1")

	out := buf.String()
	for _, want := range []string{iconSuccess + " Rendered 2 task(s)", "1 back edge(s)", iconArrow + " out.svg", "tasks", "Render: taskgraph render run-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBucketStyleCoversEveryBucket(t *testing.T) {
	for _, b := range []model.Bucket{model.BucketDone, model.BucketInProgress, model.BucketPending, model.BucketFailed} {
		if _, ok := bucketColors[b]; !ok {
			t.Errorf("no color for bucket %q", b)
		}
	}
	if got := bucketStyle("unknown").Render("x"); got == "" {
		t.Error("unknown buckets should still render")
	}
}
