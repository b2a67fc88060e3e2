package serialcap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/monitoring"
)

// Stats counts what the recorder saw.
type Stats struct {
	Lines   int
	Kept    int
	Skipped int
}

// IsRecordLine reports whether a console line looks like a capture record:
// a JSON object, or at least capture.MinCSVFields comma-separated fields.
// Bracket-tagged firmware log lines are never records.
func IsRecordLine(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "["):
		return false
	case strings.HasPrefix(line, "{"):
		return strings.HasSuffix(line, "}")
	default:
		return strings.Count(line, ",")+1 >= capture.MinCSVFields
	}
}

// Recorder copies capture records from a device console to a writer.
type Recorder struct {
	// OnLine, if set, is called for every kept line.
	OnLine func(line string)
}

// Record scans port until EOF or ctx is done. Kept lines are written to w
// one per line as they arrive. Cancellation is not an error.
func (r *Recorder) Record(ctx context.Context, port io.Reader, w io.Writer) (Stats, error) {
	var stats Stats
	scan := bufio.NewScanner(port)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return stats, nil

		case err := <-scanErrChan:
			return stats, fmt.Errorf("serial read failed: %w", err)

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return stats, fmt.Errorf("serial read failed: %w", err)
				default:
				}
				return stats, nil
			}
			stats.Lines++
			line = strings.TrimSpace(line)
			if !IsRecordLine(line) {
				stats.Skipped++
				if line != "" {
					monitoring.Debugf("serial: skip %q", line)
				}
				continue
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return stats, fmt.Errorf("failed to write capture line: %w", err)
			}
			stats.Kept++
			if r.OnLine != nil {
				r.OnLine(line)
			}
		}
	}
}
