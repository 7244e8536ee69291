package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

// frameContext is the number of lines shown around the first marked line.
const frameContext = 2

var lineSplit = regexp.MustCompile(`\r?\n`)

// CodeFrame renders the lines of source around the byte range [start, end)
// with the range underlined by carets.
func CodeFrame(source string, start, end int) string {
	lines := lineSplit.Split(source, -1)
	start = max(0, min(start, len(source)))
	end = max(start, min(end, len(source)))

	count := 0
	var res []string
	for i := 0; i < len(lines); i++ {
		count += len(lines[i]) + 1
		if count <= start {
			continue
		}
		for j := i - frameContext; j <= i+frameContext || end > count; j++ {
			if j >= len(lines) {
				break
			}
			if j < 0 {
				continue
			}
			num := strconv.Itoa(j + 1)
			res = append(res, num+strings.Repeat(" ", max(0, 3-len(num)))+"|  "+lines[j])
			lineLength := len(lines[j])
			if j == i {
				pad := start - (count - lineLength) + 1
				length := end - start
				if end > count {
					length = lineLength - pad
				}
				res = append(res, "   |  "+strings.Repeat(" ", max(0, pad))+strings.Repeat("^", max(0, length)))
			} else if j > i {
				if end > count {
					length := min(end-count, lineLength)
					res = append(res, "   |  "+strings.Repeat("^", max(0, length)))
				}
				count += lineLength + 1
			}
		}
		break
	}
	return strings.Join(res, "\n")
}
