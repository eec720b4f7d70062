package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEventScanPayload(t *testing.T) {
	body := []byte(`{"operation":"work","userId":42,"qrData":{"id":7,"m":1.5,"v":0.5,"city_from":"Алматы","city_to":"Астана"}}`)
	msg, err := DecodeEvent[ScanPayload](body)
	require.NoError(t, err)
	require.Equal(t, int64(42), msg.UserID)
	require.Equal(t, int64(7), msg.QRData.ID)
	require.Equal(t, 1.5, msg.QRData.Mass)
}

func TestDecodeEventInvalidJSON(t *testing.T) {
	_, err := DecodeEvent[ScanPayload]([]byte(`not json`))
	require.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeEventMissingRequired(t *testing.T) {
	// нет userId
	_, err := DecodeEvent[ScanPayload]([]byte(`{"operation":"work","qrData":{"id":7}}`))
	require.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeEventPreparationOperationEnum(t *testing.T) {
	_, err := DecodeEvent[PreparationPayload]([]byte(`{"operation":"unpacking","userId":1,"qrData":"ORD-1"}`))
	require.ErrorIs(t, err, ErrMalformedEvent)

	msg, err := DecodeEvent[PreparationPayload]([]byte(`{"operation":"shipment","userId":1,"qrData":"ORD-1"}`))
	require.NoError(t, err)
	require.Equal(t, "shipment", msg.Operation)
}

func TestErrorClassification(t *testing.T) {
	require.True(t, IsDrop(WrapMalformed(nil)))
	require.True(t, IsDrop(ErrUnknownIdentity))
	require.True(t, IsDrop(ErrUnroutableEvent))
	require.True(t, IsDrop(ErrMissingTariff))
	require.False(t, IsDrop(errors.New("db down")))

	require.True(t, IsLoud(ErrUnroutableEvent))
	require.True(t, IsLoud(ErrMissingTariff))
	require.False(t, IsLoud(ErrMalformedEvent))
	require.False(t, IsLoud(ErrUnknownIdentity))
}
