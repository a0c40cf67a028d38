package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

func TestSkimmerWriterEncodesRecord(t *testing.T) {
	sink := &recordingSink{}
	p := New(sink)
	defer p.Stop(context.Background())

	w := NewSkimmerWriter(p)
	err := w.WriteSkimmerRecord(domain.SkimmerRecord{
		Addr:   [6]byte{1, 2, 3, 4, 5, 6},
		RSSI:   -70,
		Name:   "HC-05",
		Reason: "suspicious name",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	rec := sink.records[0]
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, rec[:6])
	assert.Equal(t, byte(0xba), rec[6]) // -70 as uint8 two's complement
	nameLen := int(rec[7])
	assert.Equal(t, "HC-05", string(rec[8:8+nameLen]))
	reasonLenIdx := 8 + nameLen
	reasonLen := int(rec[reasonLenIdx])
	assert.Equal(t, "suspicious name", string(rec[reasonLenIdx+1:reasonLenIdx+1+reasonLen]))
}
