package sensoragg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OwlPlatform/owl-common/wire/types"
)

func TestHandshakeRoundTrip(t *testing.T) {
	frame := EncodeHandshake()
	require.True(t, DecodeHandshake(frame))
}

func TestHandshakeMismatch(t *testing.T) {
	frame := []byte{0, 0, 0, 3, 'f', 'o', 'o', 0, 0}
	require.False(t, DecodeHandshake(frame))
}

func TestSampleRoundTrip(t *testing.T) {
	s := types.Sample{
		Phy:         types.PhyFixed,
		TxID:        types.Uint128{Upper: 1, Lower: 2},
		RxID:        types.Uint128{Upper: 3, Lower: 4},
		RxTimestamp: 123456,
		RSS:         -70.25,
		SenseData:   []byte{1, 2, 3},
	}
	frame := EncodeSample(s)
	require.Equal(t, s.Phy, frame[4]) // first byte of payload is Phy (no MessageID byte here)
	got := DecodeSample(frame)
	require.True(t, got.Valid)
	require.True(t, s.TxID.Equal(got.TxID))
	require.Equal(t, s.SenseData, got.SenseData)
}

func TestSampleLengthSelfConsistency(t *testing.T) {
	s := types.Sample{TxID: types.Uint128{Lower: 1}, RxID: types.Uint128{Lower: 2}}
	frame := EncodeSample(s)
	declaredLen := uint32(frame[0])<<24 | uint32(frame[1])<<16 | uint32(frame[2])<<8 | uint32(frame[3])
	require.Equal(t, len(frame), int(declaredLen)+4)
}

func TestSampleTruncatedIsInvalid(t *testing.T) {
	s := types.Sample{TxID: types.Uint128{Lower: 1}, RxID: types.Uint128{Lower: 2}, SenseData: []byte{9, 9}}
	frame := EncodeSample(s)
	for k := 0; k < len(frame); k++ {
		got := DecodeSample(frame[:k])
		require.False(t, got.Valid, "truncation at %d should be invalid", k)
	}
}
