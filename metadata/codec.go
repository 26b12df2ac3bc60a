package metadata

import (
	"fmt"

	"github.com/wippyai/js-bindgen-ld/errors"
	"github.com/wippyai/js-bindgen-ld/internal/binary"
)

// Layout is the wire layout version understood by this codec: a single
// aggregated section per kind whose blocks carry the key inline.
const Layout = 1

// EncodeBlocks concatenates blocks as [u32 LE length][bytes] pairs.
func EncodeBlocks(blocks ...[]byte) []byte {
	w := binary.NewWriter()
	for _, b := range blocks {
		w.WriteU32LE(uint32(len(b)))
		w.WriteBytes(b)
	}
	return w.Bytes()
}

// DecodeBlocks splits a section body into its blocks. The returned slices
// alias data. section names the custom section for error reports.
func DecodeBlocks(section string, data []byte) ([][]byte, error) {
	r := binary.NewReader(data)
	var blocks [][]byte
	for r.Len() > 0 {
		offset := r.Position()
		if r.Len() < 4 {
			return nil, errors.VersionSkew(section, offset,
				fmt.Sprintf("found %d left over bytes", r.Len()))
		}
		length, _ := r.ReadU32LE()
		if uint64(length) > uint64(r.Len()) {
			return nil, errors.VersionSkew(section, offset,
				fmt.Sprintf("block length %d exceeds remaining %d bytes", length, r.Len()))
		}
		block, _ := r.ReadBytes(int(length))
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// EncodeSnippet encodes a host-snippet record into one block body.
func EncodeSnippet(s Snippet) []byte {
	w := binary.NewWriter()
	writeString16(w, s.Module)
	writeString16(w, s.Name)
	w.Byte(byte(len(s.Requires)))
	for _, req := range s.Requires {
		writeString16(w, req.Module)
		writeString16(w, req.Name)
	}
	w.WriteBytes([]byte(s.JS))
	return w.Bytes()
}

func writeString16(w *binary.Writer, s string) {
	w.WriteU16LE(uint16(len(s)))
	w.WriteBytes([]byte(s))
}

// DecodeSnippet decodes one host-snippet block. Everything after the
// requirement list up to the end of the block is the snippet text.
func DecodeSnippet(section string, block []byte) (*Snippet, error) {
	r := binary.NewReader(block)

	module, err := readString16(r)
	if err != nil {
		return nil, skew(section, r, "module name", err)
	}
	name, err := readString16(r)
	if err != nil {
		return nil, skew(section, r, "item name", err)
	}
	count, err := r.ReadByte()
	if err != nil {
		return nil, skew(section, r, "requirement count", err)
	}

	s := &Snippet{Key: Key{Module: module, Name: name}}
	if count > 0 {
		s.Requires = make([]Key, 0, count)
	}
	for i := 0; i < int(count); i++ {
		reqModule, err := readString16(r)
		if err != nil {
			return nil, skew(section, r, fmt.Sprintf("requirement %d module", i), err)
		}
		reqName, err := readString16(r)
		if err != nil {
			return nil, skew(section, r, fmt.Sprintf("requirement %d name", i), err)
		}
		s.Requires = append(s.Requires, Key{Module: reqModule, Name: reqName})
	}

	s.JS = string(r.ReadRemaining())
	return s, nil
}

func readString16(r *binary.Reader) (string, error) {
	n, err := r.ReadU16LE()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func skew(section string, r *binary.Reader, what string, cause error) error {
	e := errors.VersionSkew(section, r.Position(), "truncated "+what)
	e.Cause = cause
	return e
}

// Decode decodes every block of a metadata section. kind must be the
// classification of the section's name.
func Decode(section string, kind Kind, data []byte) ([]Record, error) {
	blocks, err := DecodeBlocks(section, data)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(blocks))
	for _, block := range blocks {
		switch kind {
		case KindAssembly:
			// Producers pad with empty blocks.
			if len(block) == 0 {
				continue
			}
			records = append(records, Record{Kind: KindAssembly, Assembly: block})
		case KindImport, KindEmbed:
			s, err := DecodeSnippet(section, block)
			if err != nil {
				return nil, err
			}
			if kind == KindEmbed && s.JS == "" {
				return nil, errors.New(errors.PhaseDecode, errors.KindVersionSkew).
					Path(section, s.Module, s.Name).
					Detail("embed has no JS snippet").
					Build()
			}
			records = append(records, Record{Kind: kind, Snippet: s})
		default:
			return nil, errors.Internal(errors.PhaseDecode,
				fmt.Sprintf("section `%s` is not a metadata section", section), nil)
		}
	}
	return records, nil
}
