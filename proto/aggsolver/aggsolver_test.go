package aggsolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/OwlPlatform/owl-common/wire/types"
)

func TestHandshakeRoundTrip(t *testing.T) {
	require.True(t, DecodeHandshake(EncodeHandshake()))
}

func TestKeepAliveMessageIDPosition(t *testing.T) {
	frame := EncodeKeepAlive()
	require.Equal(t, uint8(KeepAlive), frame[4])
	id, ok := DecodeKind(frame)
	require.True(t, ok)
	require.Equal(t, KeepAlive, id)
}

func TestCertificateRoundTrip(t *testing.T) {
	cert := []byte{1, 2, 3, 4, 5}
	frame := EncodeCertificate(cert)
	got, ok := DecodeCertificate(frame)
	require.True(t, ok)
	require.Equal(t, cert, got)
}

func TestSubscriptionRoundTrip(t *testing.T) {
	sub := types.Subscription{
		{
			Phy: types.PhyFixed,
			Txers: []types.TxerRule{
				{BaseID: types.Uint128{Lower: 0x10}, Mask: types.Uint128{Lower: 0xFF}},
				{BaseID: types.Uint128{Upper: 1, Lower: 0}, Mask: types.Uint128{Upper: 1}},
			},
			UpdateInterval: 5000,
		},
		{Phy: types.PhyMobile, Txers: nil, UpdateInterval: 100},
	}

	frame := EncodeSubscription(SubscriptionRequest, sub)
	id, got, ok := DecodeSubscription(frame)
	require.True(t, ok)
	require.Equal(t, SubscriptionRequest, id)
	if diff := cmp.Diff(sub, got); diff != "" {
		t.Fatalf("subscription round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscriptionDecoderAcceptsEitherKind(t *testing.T) {
	sub := types.Subscription{{Phy: types.PhyFixed, UpdateInterval: 1}}
	reqFrame := EncodeSubscription(SubscriptionRequest, sub)
	respFrame := EncodeSubscription(SubscriptionResponse, sub)

	id1, _, ok1 := DecodeSubscription(reqFrame)
	id2, _, ok2 := DecodeSubscription(respFrame)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, SubscriptionRequest, id1)
	require.Equal(t, SubscriptionResponse, id2)
}

func TestSubscriptionRejectsWrongKind(t *testing.T) {
	frame := EncodeKeepAlive()
	_, _, ok := DecodeSubscription(frame)
	require.False(t, ok)
}

func TestServerSampleRoundTrip(t *testing.T) {
	s := types.Sample{
		TxID:        types.Uint128{Lower: 1},
		RxID:        types.Uint128{Lower: 2},
		RxTimestamp: 99,
		RSS:         -10,
		SenseData:   []byte{7, 7},
	}
	frame := EncodeServerSample(s)
	require.Equal(t, uint8(ServerSample), frame[4])
	got := DecodeServerSample(frame)
	require.True(t, got.Valid)
	require.Equal(t, s.SenseData, got.SenseData)
}

func TestDevicePositionRoundTrip(t *testing.T) {
	p := DevicePositionRecord{
		Type:      types.PhyMobile | types.PhyTransmitter,
		Phy:       types.PhyFixed,
		DeviceID:  types.Uint128{Upper: 1, Lower: 2},
		X:         1.5, Y: -2.5, Z: 3.0,
		RegionURI: "building.floor2",
	}
	frame := EncodeDevicePosition(p)
	got := DecodeDevicePosition(frame)
	require.True(t, got.Valid)
	require.True(t, p.DeviceID.Equal(got.DeviceID))
	require.Equal(t, p.X, got.X)
	require.Equal(t, p.RegionURI, got.RegionURI)
}

func TestDevicePositionTruncationSafety(t *testing.T) {
	p := DevicePositionRecord{DeviceID: types.Uint128{Lower: 1}, RegionURI: "x.y"}
	frame := EncodeDevicePosition(p)
	for k := 0; k < len(frame); k++ {
		got := DecodeDevicePosition(frame[:k])
		require.False(t, got.Valid)
	}
}

func TestLengthSelfConsistency(t *testing.T) {
	frame := EncodeServerSample(types.Sample{TxID: types.Uint128{Lower: 1}, RxID: types.Uint128{Lower: 2}})
	declared := uint32(frame[0])<<24 | uint32(frame[1])<<16 | uint32(frame[2])<<8 | uint32(frame[3])
	require.Equal(t, len(frame), int(declared)+4)
}
