package fetcher

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

const (
	// ChunkSize is the unit data is copied in
	ChunkSize = 1024
	// ChunksPerReport is the number of chunks between progress lines
	ChunksPerReport = 1000
)

// copyChunks copies src to dst in ChunkSize reads and emits a progress
// line every ChunksPerReport chunks. It returns the bytes written. Only
// io.EOF ends the copy cleanly; any other read error, including a body cut
// short of its Content-Length, is returned.
func copyChunks(dst io.Writer, src io.Reader, emit domain.LineFunc) (int64, error) {
	const reportEvery = int64(ChunkSize * ChunksPerReport)

	buf := make([]byte, ChunkSize)
	var total int64
	next := reportEvery

	for {
		n, err := src.Read(buf)
		if n > 0 {
			written, werr := dst.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, werr
			}
			for total >= next {
				emit(progressLine(int(next/ChunkSize), total))
				next += reportEvery
			}
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func progressLine(chunks int, total int64) string {
	return fmt.Sprintf("Downloading Progress ... %dMB (%s)", chunks/ChunksPerReport, humanize.Bytes(uint64(total)))
}
