package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	msg := NewRequest("1", "echo", []interface{}{"hi"})
	body, err := msg.MarshalJSON()
	require.NoError(t, err)

	got, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, KindRequest, got.Kind)
	assert.Equal(t, "echo", got.Method)
	require.NotNil(t, got.ID)
	assert.Equal(t, "1", *got.ID)
	assert.Equal(t, []interface{}{"hi"}, got.Params)
}

func TestSuccessRoundTrip(t *testing.T) {
	msg := NewSuccess("42", []interface{}{"hi"})
	body, err := msg.MarshalJSON()
	require.NoError(t, err)

	got, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, got.Kind)
	assert.Equal(t, []interface{}{"hi"}, got.Result)
}

func TestErrorWithNullID(t *testing.T) {
	msg := NewError(nil, -32000, "boom")
	body, err := msg.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id":null`)

	got, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, KindError, got.Kind)
	assert.Nil(t, got.ID)
	assert.Equal(t, "boom", got.Error.Message)
}

func TestErrorWithID(t *testing.T) {
	msg := NewError(strPtr("7"), -32601, "Invalid method nope")
	body, err := msg.MarshalJSON()
	require.NoError(t, err)

	got, err := Parse(body)
	require.NoError(t, err)
	require.NotNil(t, got.ID)
	assert.Equal(t, "7", *got.ID)
}

func TestNotificationRoundTrip(t *testing.T) {
	msg := NewNotification("mascara://abc.readable", []interface{}{"chunk"})
	body, err := msg.MarshalJSON()
	require.NoError(t, err)

	got, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, KindNotification, got.Kind)
	assert.Nil(t, got.ID)
	assert.Equal(t, "mascara://abc.readable", got.Method)
}

func TestNotificationNullTerminator(t *testing.T) {
	msg := NewNotification("mascara://abc.readable", []interface{}{nil})
	body, err := msg.MarshalJSON()
	require.NoError(t, err)

	got, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, got.Params, 1)
	assert.Nil(t, got.Params[0])
}

func TestParseRejectsObjectParams(t *testing.T) {
	_, err := Parse([]byte(`{"id":"1","method":"echo","params":{"x":1}}`))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestParseRejectsUnrecognizedShape(t *testing.T) {
	_, err := Parse([]byte(`{"foo":"bar"}`))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestParseRejectsIDWithNoResultMethodOrError(t *testing.T) {
	_, err := Parse([]byte(`{"id":"7"}`))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func strPtr(s string) *string { return &s }
