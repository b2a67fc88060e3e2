package serialcap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

const consoleOutput = `[OINK] boot ok, heap=201334
{"bssid":"aa:bb:cc:dd:ee:ff","rssi":-61,"channel":6}
[OINK] scanning channel 6

aa:bb,Home,-70,6,0,0,0,0,0,0,0
ready,1,2
{"bssid":"11:22:33:44:55:66",
`

func TestIsRecordLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`{"bssid":"aa"}`, true},
		{"  {\"rssi\":-50}  ", true},
		{`{"bssid":"aa",`, false},
		{"a,b,c,d,e,f,g,h,i,j", true},
		{"a,b,c,d,e,f,g,h,i", false},
		{"[OINK] a,b,c,d,e,f,g,h,i,j,k", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRecordLine(tt.line), "line %q", tt.line)
	}
}

func TestRecorder_KeepsOnlyRecords(t *testing.T) {
	var out bytes.Buffer
	var seen []string
	r := &Recorder{OnLine: func(line string) { seen = append(seen, line) }}

	stats, err := r.Record(context.Background(), strings.NewReader(consoleOutput), &out)
	require.NoError(t, err)

	want := "{\"bssid\":\"aa:bb:cc:dd:ee:ff\",\"rssi\":-61,\"channel\":6}\n" +
		"aa:bb,Home,-70,6,0,0,0,0,0,0,0\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, Stats{Lines: 7, Kept: 2, Skipped: 5}, stats)
	assert.Len(t, seen, 2)
}

func TestRecorder_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var (
		stats Stats
		err   error
		out   bytes.Buffer
	)
	kept := make(chan struct{}, 1)
	r := &Recorder{OnLine: func(string) { kept <- struct{}{} }}
	go func() {
		stats, err = r.Record(ctx, pr, &out)
		close(done)
	}()

	_, werr := pw.Write([]byte("{\"bssid\":\"aa\"}\n"))
	require.NoError(t, werr)
	<-kept
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record did not return after cancel")
	}
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Kept)
}

func TestRecorder_ReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	_, err := (&Recorder{}).Record(context.Background(), iotest.ErrReader(boom), io.Discard)
	assert.ErrorIs(t, err, boom)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRecorder_WriteError(t *testing.T) {
	_, err := (&Recorder{}).Record(context.Background(), strings.NewReader("{\"a\":1}\n"), failingWriter{})
	assert.Error(t, err)
}

func TestPortOptions_Defaults(t *testing.T) {
	opts, err := PortOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, PortOptions{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N"}, opts)

	mode, err := PortOptions{}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, &serial.Mode{BaudRate: 115200, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}, mode)
}

func TestPortOptions_Explicit(t *testing.T) {
	mode, err := PortOptions{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "even"}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, 9600, mode.BaudRate)
	assert.Equal(t, 7, mode.DataBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
}

func TestPortOptions_Invalid(t *testing.T) {
	for _, o := range []PortOptions{
		{DataBits: 9},
		{StopBits: 3},
		{Parity: "mark"},
	} {
		_, err := o.Normalize()
		assert.Error(t, err, "%+v", o)
	}
}
