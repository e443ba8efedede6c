package pom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const maxDecodedCharLen = 16

// decodedDescriptor is the UTF-8 rendition of a descriptor. offsets maps
// every byte of content, plus its end, back to the original bytes; it is nil
// when the descriptor already was UTF-8.
type decodedDescriptor struct {
	content []byte
	offsets []int
}

// original returns the offset in the original bytes of a decoded offset.
func (d *decodedDescriptor) original(offset int) int {
	if d.offsets == nil {
		return offset
	}
	return d.offsets[offset]
}

// decodeDescriptor converts the descriptor to UTF-8 according to the
// encoding of its XML declaration. Only encodings that keep ASCII as is are
// accepted, since the writer patches the original bytes with ASCII text.
func decodeDescriptor(content []byte) (*decodedDescriptor, error) {
	label := declaredEncoding(content)
	if label == "" {
		return &decodedDescriptor{content: content}, nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	if name == "utf-8" {
		return &decodedDescriptor{content: content}, nil
	}
	if !asciiCompatible(enc) {
		return nil, fmt.Errorf("encoding %q is not ASCII compatible", label)
	}
	return transcode(content, enc.NewDecoder())
}

// declaredEncoding returns the encoding named by the XML declaration, or an
// empty string for UTF-8 and descriptors without declaration.
func declaredEncoding(content []byte) string {
	var label string
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.CharsetReader = func(declared string, input io.Reader) (io.Reader, error) {
		label = declared
		return input, nil
	}
	_, _ = decoder.Token() // The declaration, if any, is the first token
	return label
}

func asciiCompatible(enc encoding.Encoding) bool {
	const sample = "<version>0123456789.-_</version>\n\t\r ${}"
	encoded, err := enc.NewEncoder().String(sample)
	return err == nil && encoded == sample
}

// transcode decodes content one character at a time, recording where every
// decoded byte came from.
func transcode(content []byte, decoder transform.Transformer) (*decodedDescriptor, error) {
	decoded := &decodedDescriptor{
		content: make([]byte, 0, len(content)),
		offsets: make([]int, 0, len(content)+1),
	}
	buf := make([]byte, maxDecodedCharLen)

	for src := 0; src < len(content); {
		end := src + 1
		for {
			atEOF := end == len(content)
			nDst, nSrc, err := decoder.Transform(buf, content[src:end], atEOF)
			if nSrc > 0 {
				for range nDst {
					decoded.offsets = append(decoded.offsets, src)
				}
				decoded.content = append(decoded.content, buf[:nDst]...)
				src += nSrc
				break
			}
			if errors.Is(err, transform.ErrShortSrc) && !atEOF {
				end++
				continue
			}
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("cannot decode byte %d: %w", src, err)
		}
	}
	decoded.offsets = append(decoded.offsets, len(content))
	return decoded, nil
}
