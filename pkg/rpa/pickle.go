package rpa

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// The archive index is a Python pickle stream. Only the opcode subset that
// pickle protocols 0-2 (plus the protocol 4 framing/short-string opcodes)
// emit for a dict of string keys and int/bytes tuples is implemented;
// anything else is rejected as a malformed index.

// Pickle opcodes.
const (
	opProto          = 0x80
	opFrame          = 0x95
	opStop           = '.'
	opNone           = 'N'
	opMark           = '('
	opEmptyDict      = '}'
	opDict           = 'd'
	opEmptyList      = ']'
	opList           = 'l'
	opAppend         = 'a'
	opAppends        = 'e'
	opSetItem        = 's'
	opSetItems       = 'u'
	opTuple          = 't'
	opEmptyTuple     = ')'
	opTuple1         = 0x85
	opTuple2         = 0x86
	opTuple3         = 0x87
	opBinInt         = 'J'
	opBinInt1        = 'K'
	opBinInt2        = 'M'
	opLong1          = 0x8a
	opLong4          = 0x8b
	opBinFloat       = 'G'
	opShortBinString = 'U'
	opBinString      = 'T'
	opBinUnicode     = 'X'
	opShortBinUni    = 0x8c
	opBinBytes       = 'B'
	opShortBinBytes  = 'C'
	opBinPut         = 'q'
	opLongBinPut     = 'r'
	opBinGet         = 'h'
	opLongBinGet     = 'j'
	opMemoize        = 0x94
)

// markObject is the sentinel pushed onto the stack by opMark.
type markObject struct{}

// pickleDecoder is a minimal stack machine over a pickle byte stream.
type pickleDecoder struct {
	data  []byte
	pos   int
	stack []any
	memo  map[uint32]any
}

// unpickle decodes a pickle stream into Go values: int64, float64, string,
// []byte, []any (lists and tuples), map[string]any, nil.
func unpickle(data []byte) (any, error) {
	d := &pickleDecoder{
		data: data,
		memo: make(map[uint32]any),
	}
	return d.run()
}

func (d *pickleDecoder) run() (any, error) {
	for {
		op, err := d.readByte()
		if err != nil {
			return nil, err
		}

		switch op {
		case opProto:
			if _, err := d.readByte(); err != nil {
				return nil, err
			}
		case opFrame:
			if _, err := d.readBytes(8); err != nil {
				return nil, err
			}
		case opStop:
			return d.pop()
		case opNone:
			d.push(nil)
		case opMark:
			d.push(markObject{})
		case opEmptyDict:
			d.push(map[string]any{})
		case opDict:
			items, err := d.popToMark()
			if err != nil {
				return nil, err
			}
			m := map[string]any{}
			if err := setPairs(m, items); err != nil {
				return nil, err
			}
			d.push(m)
		case opEmptyList:
			d.push([]any{})
		case opList:
			items, err := d.popToMark()
			if err != nil {
				return nil, err
			}
			d.push(items)
		case opAppend:
			v, err := d.pop()
			if err != nil {
				return nil, err
			}
			if err := d.appendToTopList(v); err != nil {
				return nil, err
			}
		case opAppends:
			items, err := d.popToMark()
			if err != nil {
				return nil, err
			}
			for _, v := range items {
				if err := d.appendToTopList(v); err != nil {
					return nil, err
				}
			}
		case opSetItem:
			v, err := d.pop()
			if err != nil {
				return nil, err
			}
			k, err := d.pop()
			if err != nil {
				return nil, err
			}
			if err := d.setOnTopDict(k, v); err != nil {
				return nil, err
			}
		case opSetItems:
			items, err := d.popToMark()
			if err != nil {
				return nil, err
			}
			if len(items)%2 != 0 {
				return nil, fmt.Errorf("pickle: odd SETITEMS count")
			}
			for i := 0; i < len(items); i += 2 {
				if err := d.setOnTopDict(items[i], items[i+1]); err != nil {
					return nil, err
				}
			}
		case opTuple:
			items, err := d.popToMark()
			if err != nil {
				return nil, err
			}
			d.push(items)
		case opEmptyTuple:
			d.push([]any{})
		case opTuple1:
			if err := d.popTuple(1); err != nil {
				return nil, err
			}
		case opTuple2:
			if err := d.popTuple(2); err != nil {
				return nil, err
			}
		case opTuple3:
			if err := d.popTuple(3); err != nil {
				return nil, err
			}
		case opBinInt:
			b, err := d.readBytes(4)
			if err != nil {
				return nil, err
			}
			d.push(int64(int32(binary.LittleEndian.Uint32(b))))
		case opBinInt1:
			b, err := d.readByte()
			if err != nil {
				return nil, err
			}
			d.push(int64(b))
		case opBinInt2:
			b, err := d.readBytes(2)
			if err != nil {
				return nil, err
			}
			d.push(int64(binary.LittleEndian.Uint16(b)))
		case opLong1:
			n, err := d.readByte()
			if err != nil {
				return nil, err
			}
			b, err := d.readBytes(int(n))
			if err != nil {
				return nil, err
			}
			v, err := decodeLong(b)
			if err != nil {
				return nil, err
			}
			d.push(v)
		case opLong4:
			nb, err := d.readBytes(4)
			if err != nil {
				return nil, err
			}
			b, err := d.readBytes(int(binary.LittleEndian.Uint32(nb)))
			if err != nil {
				return nil, err
			}
			v, err := decodeLong(b)
			if err != nil {
				return nil, err
			}
			d.push(v)
		case opBinFloat:
			b, err := d.readBytes(8)
			if err != nil {
				return nil, err
			}
			d.push(math.Float64frombits(binary.BigEndian.Uint64(b)))
		case opShortBinString, opShortBinBytes:
			n, err := d.readByte()
			if err != nil {
				return nil, err
			}
			b, err := d.readBytes(int(n))
			if err != nil {
				return nil, err
			}
			d.pushStringOrBytes(op == opShortBinBytes, b)
		case opShortBinUni:
			n, err := d.readByte()
			if err != nil {
				return nil, err
			}
			b, err := d.readBytes(int(n))
			if err != nil {
				return nil, err
			}
			d.push(string(b))
		case opBinString, opBinUnicode, opBinBytes:
			nb, err := d.readBytes(4)
			if err != nil {
				return nil, err
			}
			b, err := d.readBytes(int(binary.LittleEndian.Uint32(nb)))
			if err != nil {
				return nil, err
			}
			d.pushStringOrBytes(op == opBinBytes, b)
		case opBinPut:
			n, err := d.readByte()
			if err != nil {
				return nil, err
			}
			top, err := d.top()
			if err != nil {
				return nil, err
			}
			d.memo[uint32(n)] = top
		case opLongBinPut:
			nb, err := d.readBytes(4)
			if err != nil {
				return nil, err
			}
			top, err := d.top()
			if err != nil {
				return nil, err
			}
			d.memo[binary.LittleEndian.Uint32(nb)] = top
		case opMemoize:
			top, err := d.top()
			if err != nil {
				return nil, err
			}
			d.memo[uint32(len(d.memo))] = top
		case opBinGet:
			n, err := d.readByte()
			if err != nil {
				return nil, err
			}
			v, ok := d.memo[uint32(n)]
			if !ok {
				return nil, fmt.Errorf("pickle: memo key %d not found", n)
			}
			d.push(v)
		case opLongBinGet:
			nb, err := d.readBytes(4)
			if err != nil {
				return nil, err
			}
			key := binary.LittleEndian.Uint32(nb)
			v, ok := d.memo[key]
			if !ok {
				return nil, fmt.Errorf("pickle: memo key %d not found", key)
			}
			d.push(v)
		default:
			return nil, fmt.Errorf("pickle: unsupported opcode 0x%02x at offset %d", op, d.pos-1)
		}
	}
}

func (d *pickleDecoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *pickleDecoder) readBytes(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *pickleDecoder) push(v any) {
	d.stack = append(d.stack, v)
}

// pushStringOrBytes keeps bytes as []byte and everything else as string.
// Python 2 pickles store archive names as str (BINSTRING), which maps to
// a Go string here.
func (d *pickleDecoder) pushStringOrBytes(isBytes bool, b []byte) {
	if isBytes {
		out := make([]byte, len(b))
		copy(out, b)
		d.push(out)
		return
	}
	d.push(string(b))
}

func (d *pickleDecoder) pop() (any, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("pickle: stack underflow")
	}
	v := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return v, nil
}

func (d *pickleDecoder) top() (any, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("pickle: stack underflow")
	}
	return d.stack[len(d.stack)-1], nil
}

// popToMark pops values down to the nearest mark and returns them in
// push order.
func (d *pickleDecoder) popToMark() ([]any, error) {
	for i := len(d.stack) - 1; i >= 0; i-- {
		if _, ok := d.stack[i].(markObject); ok {
			items := make([]any, len(d.stack)-i-1)
			copy(items, d.stack[i+1:])
			d.stack = d.stack[:i]
			return items, nil
		}
	}
	return nil, fmt.Errorf("pickle: mark not found")
}

func (d *pickleDecoder) popTuple(n int) error {
	if len(d.stack) < n {
		return fmt.Errorf("pickle: stack underflow building %d-tuple", n)
	}
	items := make([]any, n)
	copy(items, d.stack[len(d.stack)-n:])
	d.stack = d.stack[:len(d.stack)-n]
	d.push(items)
	return nil
}

func (d *pickleDecoder) appendToTopList(v any) error {
	top, err := d.top()
	if err != nil {
		return err
	}
	list, ok := top.([]any)
	if !ok {
		return fmt.Errorf("pickle: APPEND onto non-list %T", top)
	}
	d.stack[len(d.stack)-1] = append(list, v)
	return nil
}

func (d *pickleDecoder) setOnTopDict(k, v any) error {
	top, err := d.top()
	if err != nil {
		return err
	}
	m, ok := top.(map[string]any)
	if !ok {
		return fmt.Errorf("pickle: SETITEM onto non-dict %T", top)
	}
	key, err := pickleKey(k)
	if err != nil {
		return err
	}
	m[key] = v
	return nil
}

// setPairs fills m from a flat key/value item list as left by DICT.
func setPairs(m map[string]any, items []any) error {
	if len(items)%2 != 0 {
		return fmt.Errorf("pickle: odd DICT item count")
	}
	for i := 0; i < len(items); i += 2 {
		key, err := pickleKey(items[i])
		if err != nil {
			return err
		}
		m[key] = items[i+1]
	}
	return nil
}

// pickleKey coerces a dict key to a string; archive indexes only ever use
// string (or byte-string) filenames as keys.
func pickleKey(k any) (string, error) {
	switch key := k.(type) {
	case string:
		return key, nil
	case []byte:
		return string(key), nil
	}
	return "", fmt.Errorf("pickle: unsupported dict key type %T", k)
}

// decodeLong decodes a little-endian two's-complement integer as emitted
// by the LONG1/LONG4 opcodes.
func decodeLong(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > 8 {
		return 0, fmt.Errorf("pickle: integer of %d bytes exceeds 64 bits", len(b))
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	// Sign-extend from the top bit of the highest byte.
	if b[len(b)-1]&0x80 != 0 {
		for i := len(b); i < 8; i++ {
			v |= 0xff << (8 * uint(i))
		}
	}
	return int64(v), nil
}
