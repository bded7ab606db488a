package vocab

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// GGUF metadata value types (file format of llama.cpp model files).
const (
	ggufTypeUint8   = 0
	ggufTypeInt8    = 1
	ggufTypeUint16  = 2
	ggufTypeInt16   = 3
	ggufTypeUint32  = 4
	ggufTypeInt32   = 5
	ggufTypeFloat32 = 6
	ggufTypeBool    = 7
	ggufTypeString  = 8
	ggufTypeArray   = 9
	ggufTypeUint64  = 10
	ggufTypeInt64   = 11
	ggufTypeFloat64 = 12
)

const (
	ggufKeyTokens = "tokenizer.ggml.tokens"
	ggufKeyScores = "tokenizer.ggml.scores"
)

// Longest string the metadata section may carry. Keys and token texts are
// tiny; even embedded chat templates stay well under this. A corrupt or
// hostile length prefix must not drive the allocation.
const ggufMaxStringLen = 16 << 20

// #region load
// LoadGGUF reads the vocabulary out of a GGUF model file. Only the header and
// the metadata key/value section are parsed; tensor data is never touched, so
// this is cheap even for multi-gigabyte model files. Token texts come from
// tokenizer.ggml.tokens; frequency scores come from tokenizer.ggml.scores when
// present, otherwise id order stands in for frequency order.
func LoadGGUF(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gguf: %w", err)
	}
	defer f.Close()
	return readGGUFVocabulary(bufio.NewReader(f))
}

func readGGUFVocabulary(r io.Reader) ([]Entry, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("gguf header: %w", err)
	}
	if string(magic[:]) != "GGUF" {
		return nil, fmt.Errorf("not a GGUF file (magic %q)", magic)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("gguf version: %w", err)
	}

	var tensorCount, metaCount uint64
	if version >= 3 {
		if err := binary.Read(r, binary.LittleEndian, &tensorCount); err != nil {
			return nil, fmt.Errorf("gguf tensor count: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &metaCount); err != nil {
			return nil, fmt.Errorf("gguf metadata count: %w", err)
		}
	} else {
		var tc, mc uint32
		if err := binary.Read(r, binary.LittleEndian, &tc); err != nil {
			return nil, fmt.Errorf("gguf tensor count: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &mc); err != nil {
			return nil, fmt.Errorf("gguf metadata count: %w", err)
		}
		tensorCount, metaCount = uint64(tc), uint64(mc)
	}

	var tokens []string
	var scores []float32

	for i := uint64(0); i < metaCount; i++ {
		key, err := readGGUFString(r)
		if err != nil {
			return nil, fmt.Errorf("metadata key %d: %w", i, err)
		}
		var vtype uint32
		if err := binary.Read(r, binary.LittleEndian, &vtype); err != nil {
			return nil, fmt.Errorf("metadata type for %q: %w", key, err)
		}
		val, err := readGGUFValue(r, vtype)
		if err != nil {
			return nil, fmt.Errorf("metadata value for %q: %w", key, err)
		}

		switch key {
		case ggufKeyTokens:
			arr, ok := val.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: expected array", ggufKeyTokens)
			}
			tokens = make([]string, len(arr))
			for j, v := range arr {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("%s[%d]: expected string", ggufKeyTokens, j)
				}
				tokens[j] = s
			}
		case ggufKeyScores:
			arr, ok := val.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: expected array", ggufKeyScores)
			}
			scores = make([]float32, len(arr))
			for j, v := range arr {
				fv, ok := v.(float32)
				if !ok {
					return nil, fmt.Errorf("%s[%d]: expected float32", ggufKeyScores, j)
				}
				scores[j] = fv
			}
		}

		if tokens != nil && scores != nil {
			break
		}
	}

	if tokens == nil {
		return nil, fmt.Errorf("gguf metadata: %w: missing %s", ErrInvalidVocabulary, ggufKeyTokens)
	}
	if scores != nil && len(scores) != len(tokens) {
		return nil, fmt.Errorf("gguf metadata: %w: %d tokens but %d scores", ErrInvalidVocabulary, len(tokens), len(scores))
	}

	entries := make([]Entry, len(tokens))
	for id, text := range tokens {
		score := float32(len(tokens) - id)
		if scores != nil {
			score = scores[id]
		}
		entries[id] = Entry{ID: id, Text: text, Score: score}
	}
	return entries, nil
}
// #endregion load

// #region value-readers

func readGGUFString(r io.Reader) (string, error) {
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	if length > ggufMaxStringLen {
		return "", fmt.Errorf("gguf string length %d exceeds limit %d", length, ggufMaxStringLen)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readGGUFValue(r io.Reader, vtype uint32) (interface{}, error) {
	switch vtype {
	case ggufTypeUint8:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeInt8:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeUint16:
		var v uint16
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeInt16:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeUint32:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeInt32:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeFloat32:
		var v float32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeBool:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v != 0, err
	case ggufTypeString:
		return readGGUFString(r)
	case ggufTypeUint64:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeInt64:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeFloat64:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case ggufTypeArray:
		var elemType uint32
		if err := binary.Read(r, binary.LittleEndian, &elemType); err != nil {
			return nil, err
		}
		var count uint64
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		arr := make([]interface{}, count)
		for i := uint64(0); i < count; i++ {
			v, err := readGGUFValue(r, elemType)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unknown GGUF value type %d", vtype)
	}
}

// #endregion value-readers
