package main

import (
	"fmt"
	"strings"
)

// tabulate lays out one row per item under headers, with columns padded to the widest
// cell. f returns the cells for an item.
func tabulate[T any](items []T, headers []string, f func(T) []string) ([]string, error) {
	columnWidths := make([]int, len(headers))
	for i, h := range headers {
		columnWidths[i] = len(h)
	}

	cells := make([][]string, len(items))

	for i, item := range items {
		cells[i] = f(item)

		if len(cells[i]) != len(headers) {
			return nil, fmt.Errorf("invalid number of columns for item %d", i)
		}

		for j, cell := range cells[i] {
			if len(cell) > columnWidths[j] {
				columnWidths[j] = len(cell)
			}
		}
	}

	row := func(cols []string) string {
		var b strings.Builder
		for j, c := range cols {
			fmt.Fprintf(&b, "%-*s", columnWidths[j]+3, c)
		}
		return strings.TrimRight(b.String(), " ")
	}

	table := make([]string, 0, len(items)+2)
	table = append(table, row(headers))

	separator := make([]string, len(headers))
	for i := range headers {
		separator[i] = strings.Repeat("-", columnWidths[i])
	}
	table = append(table, row(separator))

	for _, c := range cells {
		table = append(table, row(c))
	}

	return table, nil
}
