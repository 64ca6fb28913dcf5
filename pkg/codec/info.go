package codec

// Info describes how a stored record decodes
type Info struct {
	Layout      string `json:"layout" yaml:"layout"` // "current" or "legacy"
	Encrypted   bool   `json:"encrypted" yaml:"encrypted"`
	Compressed  bool   `json:"compressed" yaml:"compressed"`
	HeaderSize  int    `json:"header_size" yaml:"header_size"`
	ContentSize int    `json:"content_size" yaml:"content_size"`
	PayloadSize int    `json:"payload_size" yaml:"payload_size"`
	TotalSize   int    `json:"total_size" yaml:"total_size"`
}

// Layout names reported by Inspect
const (
	LayoutCurrent = "current"
	LayoutLegacy  = "legacy"
)

// Inspect decodes data and reports the framing that produced the payload.
// It returns ErrUndecodable (wrapped) when neither layout applies.
func (c *RecordCodec) Inspect(data []byte) (*Info, error) {
	payload, legacy, err := c.decode(data)
	if err != nil {
		return nil, err
	}

	var r *Record
	if legacy {
		r, err = ParseLegacyRecord(data)
	} else {
		r, err = ParseRecord(data)
	}
	if err != nil {
		return nil, err
	}

	info := &Info{
		Layout:      LayoutCurrent,
		Encrypted:   r.Encrypted,
		Compressed:  r.Compressed,
		HeaderSize:  r.HeaderSize(),
		ContentSize: len(r.Content),
		PayloadSize: len(payload),
		TotalSize:   len(data),
	}
	if legacy {
		info.Layout = LayoutLegacy
	}
	return info, nil
}
