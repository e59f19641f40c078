package mqtt

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikas186/cts-optimizer-backend/internal/common/config"
)

type fakeToken struct {
	err      error
	complete bool
}

func (t *fakeToken) Wait() bool                       { return t.complete }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return t.complete }
func (t *fakeToken) Error() error                     { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.complete {
		close(ch)
	}
	return ch
}

// fakeClient 只实现 Publish / IsConnected，其余方法不会被调用
type fakeClient struct {
	mqtt.Client
	token    *fakeToken
	topic    string
	qos      byte
	retained bool
	payload  interface{}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topic, c.qos, c.retained, c.payload = topic, qos, retained, payload
	return c.token
}

func (c *fakeClient) IsConnected() bool { return true }

func TestClientPublish_UsesConfiguredQoS(t *testing.T) {
	fc := &fakeClient{token: &fakeToken{complete: true}}
	c := newClient(fc, &config.MQTTConfig{QoS: 1})

	require.NoError(t, c.Publish("cts/events/org-1", []byte(`{}`)))
	assert.Equal(t, "cts/events/org-1", fc.topic)
	assert.Equal(t, byte(1), fc.qos)
	assert.False(t, fc.retained)
	assert.Equal(t, []byte(`{}`), fc.payload)
	assert.True(t, c.IsConnected())
}

func TestClientPublish_Errors(t *testing.T) {
	c := newClient(&fakeClient{token: &fakeToken{complete: false}}, &config.MQTTConfig{})
	err := c.Publish("t", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")

	c = newClient(&fakeClient{token: &fakeToken{complete: true, err: errors.New("not authorized")}}, &config.MQTTConfig{})
	err = c.Publish("t", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
}
