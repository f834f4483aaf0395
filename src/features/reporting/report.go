package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/contre95/dispatch/src/features/dispatching"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// WriteSummary prints the totals of a run and, when there are any, a table of
// the files that failed or left a warning behind.
func WriteSummary(w io.Writer, s dispatching.Summary) error {
	color := shouldColorize(w)

	rows := [][]string{
		{"Seen", strconv.Itoa(s.Seen)},
		{"Transferred", paint(color, text.FgGreen, strconv.Itoa(s.Transferred))},
	}
	if s.Planned > 0 {
		rows = append(rows, []string{"Planned", paint(color, text.FgCyan, strconv.Itoa(s.Planned))})
	}
	rows = append(rows, []string{"Skipped", strconv.Itoa(s.Skipped)})
	for _, reason := range sortedReasons(s.SkipReasons) {
		rows = append(rows, []string{"  " + reason, strconv.Itoa(s.SkipReasons[reason])})
	}
	failed := strconv.Itoa(s.Failed)
	if s.Failed > 0 {
		failed = paint(color, text.FgRed, failed)
	}
	rows = append(rows,
		[]string{"Failed", failed},
		[]string{"Warnings", strconv.Itoa(s.Warnings)},
		[]string{"Bytes", humanBytes(s.Bytes)},
		[]string{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	)
	if s.Interrupted {
		rows = append(rows, []string{"Interrupted", paint(color, text.FgYellow, "yes")})
	}

	title := "Dispatch summary"
	if s.RunID != "" {
		title += " (" + s.RunID + ")"
	}
	if _, err := fmt.Fprintln(w, renderTable(title, []string{"Result", "Count"}, rows, []text.Align{text.AlignLeft, text.AlignRight})); err != nil {
		return err
	}

	if len(s.Problems) == 0 {
		return nil
	}
	problems := make([][]string, 0, len(s.Problems))
	for _, r := range s.Problems {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		problems = append(problems, []string{r.Source, r.Outcome.String(), r.Reason, msg})
	}
	_, err := fmt.Fprintln(w, renderTable("Problems", []string{"File", "Outcome", "Reason", "Error"}, problems, nil))
	return err
}

func renderTable(title string, headers []string, rows [][]string, aligns []text.Align) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft, WidthMax: 80})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func sortedReasons(reasons map[string]int) []string {
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func paint(enabled bool, c text.Color, s string) string {
	if !enabled {
		return s
	}
	return c.Sprint(s)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
