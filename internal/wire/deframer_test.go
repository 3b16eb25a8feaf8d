package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(t *testing.T, msg Message) []byte {
	t.Helper()
	body, err := msg.MarshalJSON()
	require.NoError(t, err)
	return append(body, '\r', '\n')
}

func TestDeframerSingleFrame(t *testing.T) {
	d := NewDeframer()
	f := frame(t, NewRequest("1", "echo", []interface{}{"hi"}))

	msgs, err := d.Feed(f)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "echo", msgs[0].Method)
	assert.Equal(t, 0, d.Pending())
}

func TestDeframerWaitsForTerminator(t *testing.T) {
	d := NewDeframer()
	body, err := NewRequest("1", "echo", []interface{}{"hi"}).MarshalJSON()
	require.NoError(t, err)

	msgs, err := d.Feed(body) // no \r\n yet
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.True(t, d.Pending() > 0)
}

func TestDeframerFragmentedAcrossChunks(t *testing.T) {
	d := NewDeframer()
	full := frame(t, NewRequest("1", "echo", []interface{}{"hi"}))
	full = append(full, frame(t, NewNotification("ping", nil))...)

	// split across three arbitrary chunk boundaries
	a, b, c := full[:5], full[5:17], full[17:]

	msgs, err := d.Feed(a)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = d.Feed(b)
	require.NoError(t, err)

	msgs2, err := d.Feed(c)
	require.NoError(t, err)
	msgs = append(msgs, msgs2...)

	require.Len(t, msgs, 2)
	assert.Equal(t, "echo", msgs[0].Method)
	assert.Equal(t, "ping", msgs[1].Method)
}

func TestDeframerHoldsOnMalformedFrame(t *testing.T) {
	d := NewDeframer()
	bad := []byte(`{"bogus":true}` + terminator)
	good := frame(t, NewNotification("ping", nil))

	msgs, err := d.Feed(append(bad, good...))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Empty(t, msgs)
	// bad frame plus the trailing good one are held in the buffer
	assert.True(t, d.Pending() > 0)
}

func TestDeframerStrictModeIsFatalOnCompleteMalformedFrame(t *testing.T) {
	d := NewDeframer()
	d.Strict = true
	bad := []byte(`{"bogus":true}` + terminator)
	good := frame(t, NewNotification("ping", nil))

	_, err := d.Feed(append(bad, good...))
	require.Error(t, err)
}

func TestDeframerMultipleFramesOneChunk(t *testing.T) {
	d := NewDeframer()
	full := append(frame(t, NewNotification("a", nil)), frame(t, NewNotification("b", nil))...)

	msgs, err := d.Feed(full)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Method)
	assert.Equal(t, "b", msgs[1].Method)
}
