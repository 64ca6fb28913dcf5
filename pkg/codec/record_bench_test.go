//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"
)

var benchPayloads = []struct {
	name    string
	payload []byte
}{
	{"small", []byte(`{"slot":1,"hp":100}`)},
	{"medium", bytes.Repeat([]byte("v"), 1000)},
	{"large", bytes.Repeat([]byte("inventory;"), 10000)},
}

func BenchmarkRecordCodec_Encode(b *testing.B) {
	c := NewRecordCodec(nil, nil)

	for _, bm := range benchPayloads {
		for _, combo := range flagCombos {
			b.Run(bm.name+"/"+combo.name, func(b *testing.B) {
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := c.Encode(bm.payload, combo.encrypt, combo.compress); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkRecordCodec_Decode(b *testing.B) {
	c := NewRecordCodec(nil, nil)

	for _, bm := range benchPayloads {
		for _, combo := range flagCombos {
			encoded, err := c.Encode(bm.payload, combo.encrypt, combo.compress)
			if err != nil {
				b.Fatal(err)
			}
			b.Run(bm.name+"/"+combo.name, func(b *testing.B) {
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, ok := c.Decode(encoded); !ok {
						b.Fatal("decode failed")
					}
				}
			})
		}
	}
}

func BenchmarkRecordCodec_DecodeLegacy(b *testing.B) {
	c := NewRecordCodec(nil, nil)
	data := append([]byte{0x00}, []byte("legacyplain")...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := c.Decode(data); !ok {
			b.Fatal("decode failed")
		}
	}
}
