package timeseries

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the values of the series and frame, including column names, so two
// runs over identical inputs report the same digest. Timestamps are hashed when present.
func Fingerprint(series *Series, frame *Frame) uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		d.Write(buf[:])
	}
	writeTimes := func(n int, at func(int) int64) {
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint64(buf[:], uint64(at(i)))
			d.Write(buf[:])
		}
	}

	if series != nil {
		d.WriteString(series.Name)
		for _, v := range series.Values {
			writeFloat(v)
		}
		if series.Indexed() {
			writeTimes(series.Len(), func(i int) int64 { return series.Timestamps[i].UnixNano() })
		}
	}

	if frame != nil {
		for j, name := range frame.names {
			d.WriteString(name)
			for _, v := range frame.columns[j] {
				writeFloat(v)
			}
		}
	}

	return d.Sum64()
}
