package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func TestVerifySignature_RoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	header := SignPayload(payload, testSecret, time.Now())

	err := VerifySignature(payload, header, testSecret, DefaultTolerance)
	assert.NoError(t, err)
}

func TestVerifySignature_Rejections(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"missing timestamp", "v1=deadbeef"},
		{"missing signature", "t=1700000000"},
		{"garbage signature", fmt.Sprintf("t=%d,v1=nothex", time.Now().Unix())},
		{"wrong secret", SignPayload(payload, "whsec_other", time.Now())},
		{"stale timestamp", SignPayload(payload, testSecret, time.Now().Add(-time.Hour))},
		{"future timestamp", SignPayload(payload, testSecret, time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(payload, tt.header, testSecret, DefaultTolerance)
			assert.Error(t, err)
		})
	}
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"amount":100}`)
	header := SignPayload(payload, testSecret, time.Now())

	tampered := []byte(`{"amount":999}`)
	err := VerifySignature(tampered, header, testSecret, DefaultTolerance)
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	header := SignPayload(payload, testSecret, time.Now())

	event, err := ParseEvent(payload, header, testSecret, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.IntentID())
}

func TestParseEvent_BadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	event, err := ParseEvent(payload, "t=1,v1=00", testSecret, DefaultTolerance)
	assert.Error(t, err)
	assert.Nil(t, event)
}

func TestParseEvent_MissingType(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignPayload(payload, testSecret, time.Now())

	event, err := ParseEvent(payload, header, testSecret, DefaultTolerance)
	assert.Error(t, err)
	assert.Nil(t, event)
}
