// Package formatter renders filter match results for terminal and
// machine consumption.
package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/sievelabs/sieve/internal/types"
)

var (
	matchStyle = color.New(color.FgGreen, color.Bold)
	missStyle  = color.New(color.FgHiBlack)
	fileStyle  = color.New(color.FgCyan, color.Bold)
	exprStyle  = color.New(color.FgYellow, color.Bold)
	countStyle = color.New(color.FgHiBlue, color.Bold)
)

// Format renders matches grouped by source file. With onlyMatched set,
// records that did not match are omitted.
func Format(matches []types.Match, onlyMatched bool) string {
	byFile := make(map[string][]types.Match)
	for _, m := range matches {
		byFile[m.File] = append(byFile[m.File], m)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	var builder strings.Builder
	for _, file := range files {
		fileMatches := byFile[file]
		builder.WriteString(formatFileHeader(file, fileMatches))
		for _, m := range fileMatches {
			if onlyMatched && !m.Matched {
				continue
			}
			builder.WriteString(formatMatch(m))
		}
	}
	builder.WriteString(Summary(matches))
	return builder.String()
}

// FormatJSON renders matches grouped by source file as JSON.
func FormatJSON(matches []types.Match) (string, error) {
	byFile := make(map[string][]types.Match)
	for _, m := range matches {
		byFile[m.File] = append(byFile[m.File], m)
	}
	d, err := json.Marshal(byFile)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// Summary returns a one-line matched/total count.
func Summary(matches []types.Match) string {
	matched := 0
	for _, m := range matches {
		if m.Matched {
			matched++
		}
	}
	return countStyle.Sprintf("%d of %d records matched\n", matched, len(matches))
}

func formatFileHeader(file string, matches []types.Match) string {
	if file == "" {
		file = "<stdin>"
	}
	expr := ""
	if len(matches) > 0 {
		expr = matches[0].Expression
	}
	return fileStyle.Sprintf("%s", file) + ": " + exprStyle.Sprintf("%s", expr) + "\n"
}

func formatMatch(m types.Match) string {
	label := missStyle.Sprint("    -")
	if m.Matched {
		label = matchStyle.Sprint("match")
	}
	id := m.ID
	if id != "" {
		id = " " + id
	}
	return fmt.Sprintf("  %s #%d%s\n", label, m.Index, id)
}
