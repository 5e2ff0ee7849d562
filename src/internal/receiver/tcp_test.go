package receiver

import (
	"testing"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestServer(emitted *[]core.Event) *tcpIngestServer {
	ingest := NewTCPIngest("127.0.0.1", 9514, func(ev core.Event) {
		*emitted = append(*emitted, ev)
	}, newTestLogger())
	return &tcpIngestServer{ingest: ingest}
}

func TestDrainLinesSplitsRecords(t *testing.T) {
	var emitted []core.Event
	s := newIngestServer(&emitted)
	client := &tcpIngestClient{}

	client.buffer.WriteString(`{"message":"one"}` + "\n" + `{"message":"two"}` + "\r\n")
	s.drainLines(client)

	require.Len(t, emitted, 2)
	assert.Equal(t, "one", emitted[0].Message())
	assert.Equal(t, "two", emitted[1].Message())
	assert.Zero(t, client.buffer.Len())
	assert.Equal(t, uint64(2), s.ingest.totalEvents.Load())
}

func TestDrainLinesKeepsPartialLine(t *testing.T) {
	var emitted []core.Event
	s := newIngestServer(&emitted)
	client := &tcpIngestClient{}

	client.buffer.WriteString(`{"message":"whole"}` + "\n" + `{"mess`)
	s.drainLines(client)

	require.Len(t, emitted, 1)
	assert.Equal(t, "whole", emitted[0].Message())
	assert.Equal(t, `{"mess`, client.buffer.String())

	// The rest of the record arrives with the next traffic event
	client.buffer.WriteString(`age":"split"}` + "\n")
	s.drainLines(client)

	require.Len(t, emitted, 2)
	assert.Equal(t, "split", emitted[1].Message())
	assert.Zero(t, client.buffer.Len())
}

func TestDrainLinesSkipsInvalid(t *testing.T) {
	var emitted []core.Event
	s := newIngestServer(&emitted)
	client := &tcpIngestClient{}

	client.buffer.WriteString("not json\n\n" + `{"message":"ok"}` + "\n" + "[1,2]\n")
	s.drainLines(client)

	require.Len(t, emitted, 1)
	assert.Equal(t, "ok", emitted[0].Message())
	assert.Equal(t, uint64(2), s.ingest.invalidEvents.Load())
}
