package outbox

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type sequenceClock struct {
	times []time.Time
	index int
}

func (c *sequenceClock) Now() time.Time {
	if len(c.times) == 0 {
		return time.Time{}
	}
	if c.index >= len(c.times) {
		return c.times[len(c.times)-1]
	}
	t := c.times[c.index]
	c.index++

	return t
}

func TestRawID_StringRoundTrip(t *testing.T) {
	gen := newUUIDv7GeneratorWithRand(fixedClock{now: time.Unix(1, 0)}, bytes.NewReader(bytes.Repeat([]byte{0x42}, 64)))
	id, err := gen.newRaw()
	require.NoError(t, err)

	parsed, err := ParseRawID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestID_TextRoundTrip(t *testing.T) {
	gen := newUUIDv7GeneratorWithRand(fixedClock{now: time.Unix(1, 0)}, bytes.NewReader(bytes.Repeat([]byte{0x42}, 64)))
	text, err := gen.New()
	require.NoError(t, err)
	require.Len(t, text, uuidTextLength)

	parsed, err := ParseRawID(text)
	require.NoError(t, err)
	require.Equal(t, text, parsed.String())
}

func TestParseRawID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"not-a-uuid",
		"00000000-0000-0000-0000-00000000000",
		"000000000000000000000000000000000",
		"00000000_0000_0000_0000_000000000000",
	}
	for _, value := range cases {
		_, err := ParseRawID(value)
		require.Error(t, err, "expected error for %q", value)
	}
}

func TestUUIDv7Generator_VersionVariant(t *testing.T) {
	gen := newUUIDv7GeneratorWithRand(fixedClock{now: time.Unix(10, 0)}, bytes.NewReader(bytes.Repeat([]byte{0x11}, 64)))
	id, err := gen.newRaw()
	require.NoError(t, err)

	version := id[6] >> 4
	require.Equal(t, byte(0x7), version)

	variant := id[8] >> 6
	require.Equal(t, byte(0x2), variant)
}

func TestUUIDv7Generator_Monotonic(t *testing.T) {
	gen := newUUIDv7GeneratorWithRand(fixedClock{now: time.Unix(10, 0)}, bytes.NewReader(bytes.Repeat([]byte{0x22}, 128)))
	id1, err := gen.newRaw()
	require.NoError(t, err)
	id2, err := gen.newRaw()
	require.NoError(t, err)

	require.Negative(t, bytes.Compare(id1[:], id2[:]))
}

func TestUUIDv7GeneratorClockBackwards(t *testing.T) {
	t1 := time.Unix(10, 0)
	t0 := time.Unix(9, 0)
	clock := &sequenceClock{times: []time.Time{t1, t0}}
	gen := newUUIDv7GeneratorWithRand(clock, bytes.NewReader(bytes.Repeat([]byte{0x42}, 64)))

	id1, err := gen.newRaw()
	require.NoError(t, err)
	id2, err := gen.newRaw()
	require.NoError(t, err)

	require.Negative(t, bytes.Compare(id1[:], id2[:]), "expected id2 to be greater than id1 on clock rollback")
}

func TestUUIDv7GeneratorSequenceOverflow(t *testing.T) {
	base := time.Unix(100, 0)
	clock := &sequenceClock{times: []time.Time{base, base.Add(time.Millisecond)}}
	gen := newUUIDv7GeneratorWithRand(clock, bytes.NewReader(bytes.Repeat([]byte{0x33}, 64)))
	gen.lastMS = base.UnixMilli()
	gen.seq = randAMask

	id, err := gen.newRaw()
	require.NoError(t, err)

	ts := idTimestampMillis(id)
	require.Greater(t, ts, base.UnixMilli())
	require.Greater(t, gen.lastMS, base.UnixMilli())
}

func TestRawIDScanBinary(t *testing.T) {
	gen := newUUIDv7GeneratorWithRand(fixedClock{now: time.Unix(10, 0)}, bytes.NewReader(bytes.Repeat([]byte{0x33}, 64)))
	id, err := gen.newRaw()
	require.NoError(t, err)

	var scanned RawID
	require.NoError(t, scanned.Scan(id[:]))
	require.Equal(t, id, scanned)
}

func newUUIDv7GeneratorWithRand(clock Clock, r io.Reader) *UUIDv7Generator {
	if clock == nil {
		clock = SystemClock{}
	}
	if r == nil {
		r = rand.Reader
	}

	return &UUIDv7Generator{clock: clock, rand: r}
}

func idTimestampMillis(id RawID) int64 {
	return int64(id[0])<<shift40 |
		int64(id[1])<<shift32 |
		int64(id[2])<<shift24 |
		int64(id[3])<<shift16 |
		int64(id[4])<<shift8 |
		int64(id[5])
}
