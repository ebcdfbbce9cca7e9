package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderBoard colors the server's text board: white pieces blue, black
// pieces red, labels cyan.
func RenderBoard(w io.Writer, textBoard string) {
	for _, line := range strings.Split(textBoard, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// The header holds the uppercase column labels; color it whole.
		if strings.HasPrefix(line, "    ") {
			fmt.Fprintf(w, "%s%s%s\n", Cyan, line, Reset)
			continue
		}
		for _, ch := range line {
			switch {
			case ch == 'w' || ch == 'W':
				fmt.Fprintf(w, "%s%c%s", Blue, ch, Reset)
			case ch == 'b' || ch == 'B':
				fmt.Fprintf(w, "%s%c%s", Red, ch, Reset)
			case ch >= '0' && ch <= '9':
				fmt.Fprintf(w, "%s%c%s", Cyan, ch, Reset)
			default:
				fmt.Fprintf(w, "%c", ch)
			}
		}
		fmt.Fprintln(w)
	}
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
