package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/taskgraph/pkg/model"
)

// stdout receives all non-log command output.
var stdout io.Writer = os.Stdout

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// bucketColors maps status buckets to the legend palette shared by the
// terminal output and the dashboard.
var bucketColors = map[model.Bucket]lipgloss.Color{
	model.BucketDone:       colorGreen,
	model.BucketInProgress: colorBlue,
	model.BucketFailed:     colorRed,
	model.BucketPending:    colorGray,
}

// bucketStyle colors a status by its bucket.
func bucketStyle(b model.Bucket) lipgloss.Style {
	c, ok := bucketColors[b]
	if !ok {
		c = colorGray
	}
	return lipgloss.NewStyle().Foreground(c)
}

func printLine(icon lipgloss.Style, mark, format string, args ...any) {
	fmt.Fprintln(stdout, icon.Render(mark)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	printLine(lipgloss.NewStyle().Foreground(colorGreen), iconSuccess, format, args...)
}

func printError(format string, args ...any) {
	printLine(lipgloss.NewStyle().Foreground(colorRed), iconError, format, args...)
}

func printWarning(format string, args ...any) {
	printLine(StyleWarning, iconWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(lipgloss.NewStyle().Foreground(colorGray), iconInfo, format, args...)
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints task and edge counts plus whether the layout came from
// the cache.
func printStats(tasks, edges int, cached bool) {
	parts := []string{fmt.Sprintf("%d tasks", tasks), fmt.Sprintf("%d edges", edges)}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGreen).Render("cached"))
	} else {
		parts = append(parts, "fresh")
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
