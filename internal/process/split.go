package process

import (
	"bufio"
	"bytes"
	"strings"
)

// SplitLines is a bufio.SplitFunc that treats "\n", "\r\n" and a bare "\r"
// as line boundaries. Terminators are not part of the returned token.
func SplitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	if i < 0 {
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}

	if data[i] == '\n' {
		return i + 1, data[:i], nil
	}

	// data[i] == '\r': need one more byte to tell "\r\n" from a bare "\r"
	if i+1 < len(data) {
		if data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return i + 1, data[:i], nil
	}
	return 0, nil, nil
}

// boundedSplit wraps SplitLines so a line longer than limit is emitted in
// limit-sized pieces instead of failing the scan with bufio.ErrTooLong.
// limit must not exceed the scanner's max buffer size.
func boundedSplit(limit int) bufio.SplitFunc {
	skipLF := false
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if skipLF {
			if len(data) == 0 && !atEOF {
				return 0, nil, nil
			}
			skipLF = false
			if len(data) > 0 && data[0] == '\n' {
				return 1, nil, nil
			}
		}

		advance, token, err := SplitLines(data, atEOF)
		if advance == 0 && token == nil && err == nil && len(data) >= limit {
			// a full buffer ending in "\r" is a complete line whose "\n"
			// has not arrived yet
			if n := len(data); data[n-1] == '\r' {
				skipLF = true
				return n, data[:n-1], nil
			}
			return limit, data[:limit], nil
		}
		return advance, token, err
	}
}

// decodeLine converts raw output to text, replacing invalid UTF-8
func decodeLine(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
