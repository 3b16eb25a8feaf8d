package dispatch

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/161chihuahuas/mascara/internal/obslog"
	"github.com/161chihuahuas/mascara/internal/pointer"
	"github.com/161chihuahuas/mascara/internal/wire"
)

func newClient(buf *bytes.Buffer) *Client {
	return &Client{
		Calls:   NewCallRegistry(),
		Streams: pointer.NewRegistry(),
		Framer:  wire.NewFramer(buf),
		Logger:  obslog.NullLogger{},
	}
}

func TestClientCompletesSuccess(t *testing.T) {
	var out bytes.Buffer
	c := newClient(&out)

	var gotResult []interface{}
	id := c.Calls.New(func(result []interface{}, err error) {
		gotResult = result
	})

	c.Dispatch(wire.NewSuccess(id, []interface{}{"hi"}))
	assert.Equal(t, []interface{}{"hi"}, gotResult)
	assert.Equal(t, 0, c.Calls.Len())
}

func TestClientCompletesError(t *testing.T) {
	var out bytes.Buffer
	c := newClient(&out)

	var gotErr error
	id := c.Calls.New(func(result []interface{}, err error) {
		gotErr = err
	})

	c.Dispatch(wire.NewError(&id, -32601, "Invalid method: nope"))
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "Invalid method")
}

func TestClientStrayResponseIsUnhandled(t *testing.T) {
	var out bytes.Buffer
	c := newClient(&out)
	var unhandled []wire.Message
	c.Unhandled = func(m wire.Message) { unhandled = append(unhandled, m) }

	c.Dispatch(wire.NewSuccess("999", []interface{}{"x"}))
	require.Len(t, unhandled, 1)
}

func TestClientBindsReadableStreamFromResponse(t *testing.T) {
	var out bytes.Buffer
	c := newClient(&out)

	p := pointer.Mint(pointer.DefaultScheme, pointer.Readable)
	var result []interface{}
	id := c.Calls.New(func(r []interface{}, err error) { result = r })
	c.Dispatch(wire.NewSuccess(id, []interface{}{p.String()}))

	require.Len(t, result, 1)
	ep, ok := result[0].(*pointer.Endpoint)
	require.True(t, ok)
	assert.Equal(t, pointer.Readable, ep.Kind)

	c.Dispatch(wire.NewNotification(p.String(), []interface{}{"a"}))
	c.Dispatch(wire.NewNotification(p.String(), []interface{}{nil}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, ok2, err := ep.Recv(ctx)
	require.NoError(t, err)
	require.True(t, ok2)
	assert.Equal(t, "a", v)

	_, ok2, err = ep.Recv(ctx)
	require.NoError(t, err)
	assert.False(t, ok2)
}

func TestClientBindsWritableStreamAndForwards(t *testing.T) {
	var out bytes.Buffer
	c := newClient(&out)

	p := pointer.Mint(pointer.DefaultScheme, pointer.Writable)
	var result []interface{}
	id := c.Calls.New(func(r []interface{}, err error) { result = r })
	c.Dispatch(wire.NewSuccess(id, []interface{}{p.String()}))

	ep := result[0].(*pointer.Endpoint)
	require.NoError(t, ep.Push("x"))
	ep.Close()

	require.Eventually(t, func() bool {
		d := wire.NewDeframer()
		msgs, err := d.Feed(out.Bytes())
		return err == nil && len(msgs) == 2
	}, time.Second, 5*time.Millisecond)

	d := wire.NewDeframer()
	msgs, err := d.Feed(out.Bytes())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, p.String(), msgs[0].Method)
	assert.Equal(t, []interface{}{"x"}, msgs[0].Params)
	assert.Equal(t, []interface{}{nil}, msgs[1].Params)
}
