package core

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// EnvelopeVersion is the container format written by Seal.
const EnvelopeVersion = 1

// Envelope field numbers.
const (
	fieldVersion  protowire.Number = 1
	fieldSavedAt  protowire.Number = 2
	fieldTick     protowire.Number = 3
	fieldChecksum protowire.Number = 4
	fieldPayload  protowire.Number = 5
)

var (
	ErrBadEnvelope = errors.New("malformed save envelope")
	ErrChecksum    = errors.New("save checksum mismatch")
)

// Envelope wraps an LZ4-compressed state document together with the
// metadata needed to validate it before decompression.
type Envelope struct {
	Version  uint64
	SavedAt  time.Time
	Tick     uint64
	Checksum [32]byte
	Payload  []byte
}

// Seal compresses doc and wraps it in an envelope encoded with protobuf
// wire framing.
func Seal(doc []byte, tick uint64, savedAt time.Time) ([]byte, error) {
	payload, err := Compress(doc)
	if err != nil {
		return nil, err
	}
	sum := Sum(payload)

	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, EnvelopeVersion)
	b = protowire.AppendTag(b, fieldSavedAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(savedAt.UnixNano()))
	b = protowire.AppendTag(b, fieldTick, protowire.VarintType)
	b = protowire.AppendVarint(b, tick)
	b = protowire.AppendTag(b, fieldChecksum, protowire.BytesType)
	b = protowire.AppendBytes(b, sum[:])
	b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	return b, nil
}

// ParseEnvelope decodes the wire fields without touching the payload.
// Unknown fields are skipped.
func ParseEnvelope(b []byte) (*Envelope, error) {
	env := &Envelope{}
	var haveSum, havePayload bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: version: %v", ErrBadEnvelope, protowire.ParseError(m))
			}
			env.Version, n = v, m
		case num == fieldSavedAt && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: saved_at: %v", ErrBadEnvelope, protowire.ParseError(m))
			}
			env.SavedAt, n = time.Unix(0, int64(v)).UTC(), m
		case num == fieldTick && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: tick: %v", ErrBadEnvelope, protowire.ParseError(m))
			}
			env.Tick, n = v, m
		case num == fieldChecksum && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 || len(v) != len(env.Checksum) {
				return nil, fmt.Errorf("%w: checksum", ErrBadEnvelope)
			}
			copy(env.Checksum[:], v)
			haveSum, n = true, m
		case num == fieldPayload && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: payload: %v", ErrBadEnvelope, protowire.ParseError(m))
			}
			env.Payload, havePayload, n = append([]byte(nil), v...), true, m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrBadEnvelope, num, protowire.ParseError(n))
			}
		}
		b = b[n:]
	}

	if env.Version == 0 || !haveSum || !havePayload {
		return nil, fmt.Errorf("%w: missing required field", ErrBadEnvelope)
	}
	if env.Version > EnvelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadEnvelope, env.Version)
	}
	return env, nil
}

// Open verifies the checksum and returns the decompressed document.
func (e *Envelope) Open() ([]byte, error) {
	if Sum(e.Payload) != e.Checksum {
		return nil, ErrChecksum
	}
	return Decompress(e.Payload)
}

// Unseal is ParseEnvelope followed by Open.
func Unseal(b []byte) (*Envelope, []byte, error) {
	env, err := ParseEnvelope(b)
	if err != nil {
		return nil, nil, err
	}
	doc, err := env.Open()
	if err != nil {
		return env, nil, err
	}
	return env, doc, nil
}
