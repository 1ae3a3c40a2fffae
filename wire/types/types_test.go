package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OwlPlatform/owl-common/wire/codec"
)

func TestUint128Ordering(t *testing.T) {
	a := Uint128{Upper: 1, Lower: 0}
	b := Uint128{Upper: 0, Lower: ^uint64(0)}
	require.True(t, a.Less(b) == false)
	require.True(t, b.Less(a))
	require.False(t, a.Equal(b))
}

func TestUint128AndReflexiveSymmetricTransitive(t *testing.T) {
	mask := Uint128{Upper: 0xFFFFFFFF00000000, Lower: 0}
	a := Uint128{Upper: 0x1122334455667788, Lower: 9}
	b := Uint128{Upper: 0x1122334499999999, Lower: 1}
	c := Uint128{Upper: 0x1122334400000000, Lower: 2}

	// Reflexive
	require.True(t, a.And(mask).Equal(a.And(mask)))
	// Symmetric: a&mask == b&mask implies b&mask == a&mask
	ab := a.And(mask).Equal(b.And(mask))
	ba := b.And(mask).Equal(a.And(mask))
	require.Equal(t, ab, ba)
	// Transitive
	if a.And(mask).Equal(b.And(mask)) && b.And(mask).Equal(c.And(mask)) {
		require.True(t, a.And(mask).Equal(c.And(mask)))
	}
}

func TestUint128StringVsLegacyString(t *testing.T) {
	u := Uint128{Upper: 1, Lower: 0xff}
	require.Len(t, u.String(), 32)
	require.Equal(t, "000000000000000100000000000000ff", u.String())
	require.Equal(t, "255", u.LegacyString())
}

func TestTransmitterRoundTrip(t *testing.T) {
	tx := Transmitter{Phy: PhyMobile, ID: Uint128{Upper: 7, Lower: 42}}

	e := codec.NewEncoder(0)
	n := WriteTransmitter(e, tx)
	require.Equal(t, 17, n) // 1 + 16 bytes

	r := codec.NewReader(e.Bytes())
	got := ReadTransmitter(r)
	require.False(t, r.OutOfRange())
	require.True(t, tx.Equal(got))
}

func TestTransmitterOrdering(t *testing.T) {
	low := Transmitter{Phy: PhyFixed, ID: Uint128{Upper: 0, Lower: 100}}
	high := Transmitter{Phy: PhyMobile, ID: Uint128{Upper: 0, Lower: 1}}
	require.True(t, low.Less(high)) // phy compared first
}

func TestSampleRoundTrip(t *testing.T) {
	s := Sample{
		Phy:         PhyFixed,
		TxID:        Uint128{Upper: 1, Lower: 2},
		RxID:        Uint128{Upper: 3, Lower: 4},
		RxTimestamp: 1_700_000_000_000,
		RSS:         -42.5,
		SenseData:   []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}

	e := codec.NewEncoder(0)
	WriteSample(e, s)

	r := codec.NewReader(e.Bytes())
	got := ReadSample(r)
	require.True(t, got.Valid)
	require.True(t, s.TxID.Equal(got.TxID))
	require.True(t, s.RxID.Equal(got.RxID))
	require.Equal(t, s.RxTimestamp, got.RxTimestamp)
	require.Equal(t, s.RSS, got.RSS)
	require.Equal(t, s.SenseData, got.SenseData)
}

func TestSampleEmptySenseData(t *testing.T) {
	s := Sample{Phy: PhyFixed, TxID: Uint128{Lower: 1}, RxID: Uint128{Lower: 2}, RxTimestamp: 1, RSS: 1}
	e := codec.NewEncoder(0)
	WriteSample(e, s)
	r := codec.NewReader(e.Bytes())
	got := ReadSample(r)
	require.True(t, got.Valid)
	require.Empty(t, got.SenseData)
}

func TestRuleMatches(t *testing.T) {
	rule := Rule{
		Phy: PhyFixed,
		Txers: []TxerRule{
			{BaseID: Uint128{Lower: 0x10}, Mask: Uint128{Lower: 0xFF}},
		},
		UpdateInterval: 1000,
	}
	matching := Transmitter{Phy: PhyFixed, ID: Uint128{Lower: 0x10}}
	nonMatchingPhy := Transmitter{Phy: PhyMobile, ID: Uint128{Lower: 0x10}}
	nonMatchingID := Transmitter{Phy: PhyFixed, ID: Uint128{Lower: 0x11}}

	require.True(t, rule.Matches(matching))
	require.False(t, rule.Matches(nonMatchingPhy))
	require.False(t, rule.Matches(nonMatchingID))
}

func TestGrailTimeExpired(t *testing.T) {
	require.False(t, MaxGrailTime.Expired(GrailTime(1<<62)))
	require.True(t, GrailTime(100).Expired(GrailTime(200)))
	require.False(t, GrailTime(300).Expired(GrailTime(200)))
}
