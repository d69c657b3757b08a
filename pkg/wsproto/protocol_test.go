package wsproto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	auth, err := Sign("app-key", "secret", "123.456", "private-provider.7")
	require.NoError(t, err)
	assert.Regexp(t, `^app-key:[0-9a-f]{64}$`, auth)

	assert.True(t, Verify("app-key", "secret", "123.456", "private-provider.7", auth))
	assert.False(t, Verify("app-key", "secret", "123.456", "private-provider.8", auth))
	assert.False(t, Verify("app-key", "secret", "999.1", "private-provider.7", auth))
	assert.False(t, Verify("app-key", "other", "123.456", "private-provider.7", auth))
	assert.False(t, Verify("other-key", "secret", "123.456", "private-provider.7", auth))
	assert.False(t, Verify("app-key", "secret", "123.456", "private-provider.7", "garbage"))
}

func TestEncodeDecode(t *testing.T) {
	b, err := Encode(EventSubscribe, "", SubscribeData{Channel: "admin"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"subscribe","data":{"channel":"admin"}}`, string(b))

	f, err := Decode(b)
	require.NoError(t, err)
	var sub SubscribeData
	require.NoError(t, json.Unmarshal(f.Data, &sub))
	assert.Equal(t, "admin", sub.Channel)

	raw := json.RawMessage(`{"lead":{"id":1}}`)
	b, err = Encode("lead.assigned", "admin", raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"lead.assigned","channel":"admin","data":{"lead":{"id":1}}}`, string(b))

	assert.True(t, IsPrivate("private-provider.1"))
	assert.False(t, IsPrivate("admin"))
}
