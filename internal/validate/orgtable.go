package validate

import (
	"os"
	"regexp"
	"strings"
)

var (
	tableLineRe = regexp.MustCompile(`^(\s*)\|`)
	separatorRe = regexp.MustCompile(`^\|[-+]+\|?\s*$`)
)

// AlignOrgFile realigns every table block in an org file in place. The
// file is rewritten only when alignment changed something. Alignment is
// cosmetic; callers treat any returned error as ignorable.
func AlignOrgFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)
	aligned := AlignOrgTables(content)
	if aligned == content {
		return nil
	}
	return os.WriteFile(path, []byte(aligned), 0o644)
}

// AlignOrgTables realigns the tables in org-mode text and returns the
// result. Non-table lines pass through untouched.
func AlignOrgTables(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for i := 0; i < len(lines); {
		m := tableLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			result = append(result, lines[i])
			i++
			continue
		}
		indent := m[1]
		var block []string
		for i < len(lines) && tableLineRe.MatchString(lines[i]) {
			block = append(block, lines[i])
			i++
		}
		result = append(result, alignTable(block, indent)...)
	}
	return strings.Join(result, "\n")
}

type orgRow struct {
	separator bool
	cells     []string
}

func alignTable(block []string, indent string) []string {
	rows := make([]orgRow, len(block))
	maxCols := 0
	for i, line := range block {
		stripped := strings.TrimLeft(line, " \t")
		if separatorRe.MatchString(stripped) {
			rows[i] = orgRow{separator: true}
			continue
		}
		parts := strings.Split(stripped, "|")
		// Leading and trailing pipes produce empty first/last parts.
		inner := parts[1 : len(parts)-1]
		cells := make([]string, len(inner))
		for j, c := range inner {
			cells[j] = strings.TrimSpace(c)
		}
		rows[i] = orgRow{cells: cells}
		if len(cells) > maxCols {
			maxCols = len(cells)
		}
	}
	if maxCols == 0 {
		return block
	}

	widths := make([]int, maxCols)
	for i := range rows {
		if rows[i].separator {
			continue
		}
		for len(rows[i].cells) < maxCols {
			rows[i].cells = append(rows[i].cells, "")
		}
		for c, cell := range rows[i].cells {
			if len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}
	for c := range widths {
		if widths[c] < 1 {
			widths[c] = 1
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		b.WriteString(indent)
		b.WriteString("|")
		if row.separator {
			for c, w := range widths {
				if c > 0 {
					b.WriteString("+")
				}
				b.WriteString(strings.Repeat("-", w+2))
			}
		} else {
			for c, cell := range row.cells {
				if c > 0 {
					b.WriteString("|")
				}
				b.WriteString(" ")
				b.WriteString(cell)
				b.WriteString(strings.Repeat(" ", widths[c]-len(cell)))
				b.WriteString(" ")
			}
		}
		b.WriteString("|")
		out[i] = b.String()
	}
	return out
}
