package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/wifiprep/internal/monitoring"
	"github.com/banshee-data/wifiprep/internal/serialcap"
)

// openPort is swapped in tests.
var openPort serialcap.Opener = serialcap.Open

func runRecord(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("record", stderr)
	baud := fs.Int("baud", 0, "Serial baud rate (default 115200)")
	duration := fs.Duration("duration", 0, "Stop after this long (0 records until interrupted)")
	if code, ok := c.parse(args); !ok {
		return code
	}
	if c.input == "" || c.output == "" {
		fmt.Fprintln(stderr, "Error: --input (serial device) and --output required for record")
		return 1
	}
	if code, ok := c.loadConfig(stderr); !ok {
		return code
	}
	if *baud <= 0 {
		*baud = c.cfg.GetSerialBaud()
	}

	port, err := openPort(c.input, serialcap.PortOptions{BaudRate: *baud})
	if err != nil {
		return fail(stderr, err)
	}
	defer port.Close()

	out, err := os.OpenFile(c.output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fail(stderr, fmt.Errorf("failed to open capture file: %w", err))
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	monitoring.Logf("recording %s at %d baud into %s", c.input, *baud, c.output)
	start := time.Now()
	stats, err := (&serialcap.Recorder{}).Record(ctx, port, out)
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "Recorded %d capture lines (%d skipped) in %s\n",
		stats.Kept, stats.Skipped, time.Since(start).Round(time.Millisecond))
	return 0
}
