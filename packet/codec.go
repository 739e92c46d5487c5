// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"

	"github.com/go-lpc/sbit/internal/crc16"
)

// record framing markers
const (
	hdrPacket = 0xB4
	trlPacket = 0xA4
)

const recLen = 8 // hdr + word + trl + crc16

// Encoder writes sbit event records to an output stream.
//
// Each record is framed with a header and a trailer marker and closed
// by a big-endian CRC-16 over the framed bytes.
type Encoder struct {
	w   io.Writer
	crc crc16.Hash16
	buf []byte
	err error
}

// NewEncoder creates an encoder writing records to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		crc: crc16.New(nil),
		buf: make([]byte, recLen),
	}
}

// Encode writes the record p. After an I/O error the encoder is stuck
// and keeps returning that error.
func (enc *Encoder) Encode(p *Packet) error {
	if enc.err != nil {
		return enc.err
	}
	buf := enc.buf
	buf[0] = hdrPacket
	binary.BigEndian.PutUint32(buf[1:5], p.Word())
	buf[5] = trlPacket
	enc.crc.Reset()
	_, _ = enc.crc.Write(buf[:6])
	binary.BigEndian.PutUint16(buf[6:8], enc.crc.Sum16())
	if _, err := enc.w.Write(buf); err != nil {
		enc.err = xerrors.Errorf("packet: could not write record: %w", err)
		return enc.err
	}
	return nil
}

// Decoder reads sbit event records from an input stream.
type Decoder struct {
	r   io.Reader
	crc crc16.Hash16
	buf []byte
	err error
}

// NewDecoder creates a decoder reading records from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		crc: crc16.New(nil),
		buf: make([]byte, recLen),
	}
}

// Decode reads the next record into p. A clean end of stream at a
// record boundary is reported as io.EOF; inside a record it is
// io.ErrUnexpectedEOF. After any other error the decoder is stuck and
// keeps returning that error.
func (dec *Decoder) Decode(p *Packet) error {
	if dec.err != nil {
		return dec.err
	}
	switch _, err := io.ReadFull(dec.r, dec.buf[:1]); err {
	case nil:
		// ok
	case io.EOF:
		return io.EOF
	default:
		dec.err = xerrors.Errorf("packet: could not read header marker: %w", err)
		return dec.err
	}
	if dec.buf[0] != hdrPacket {
		dec.err = xerrors.Errorf("packet: invalid header marker 0x%02x", dec.buf[0])
		return dec.err
	}
	if _, err := io.ReadFull(dec.r, dec.buf[1:recLen]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		dec.err = xerrors.Errorf("packet: could not read record: %w", err)
		return dec.err
	}
	if dec.buf[5] != trlPacket {
		dec.err = xerrors.Errorf("packet: invalid trailer marker 0x%02x", dec.buf[5])
		return dec.err
	}
	dec.crc.Reset()
	_, _ = dec.crc.Write(dec.buf[:6])
	if got, want := binary.BigEndian.Uint16(dec.buf[6:8]), dec.crc.Sum16(); got != want {
		dec.err = xerrors.Errorf(
			"packet: invalid CRC: got=0x%04x, want=0x%04x",
			got, want,
		)
		return dec.err
	}
	*p = FromWord(binary.BigEndian.Uint32(dec.buf[1:5]))
	return nil
}
