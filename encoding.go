package main

import (
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the closed set of encodings the resolver knows how to decode.
type Encoding int

const (
	EncodingFallback Encoding = iota // unrecognized or undetected, lossy UTF-8
	EncodingUTF8
	EncodingShiftJIS
	EncodingISO2022JP
	EncodingEUCJP
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingShiftJIS:
		return "Shift_JIS"
	case EncodingISO2022JP:
		return "ISO-2022-JP"
	case EncodingEUCJP:
		return "EUC-JP"
	default:
		return "fallback"
	}
}

// encodingFromCharset maps detector output onto the closed set.
func encodingFromCharset(charset string) Encoding {
	switch charset {
	case "UTF-8":
		return EncodingUTF8
	case "Shift_JIS":
		return EncodingShiftJIS
	case "ISO-2022-JP":
		return EncodingISO2022JP
	case "EUC-JP":
		return EncodingEUCJP
	default:
		return EncodingFallback
	}
}

func (e Encoding) decoder() *encoding.Decoder {
	switch e {
	case EncodingShiftJIS:
		return japanese.ShiftJIS.NewDecoder()
	case EncodingISO2022JP:
		return japanese.ISO2022JP.NewDecoder()
	case EncodingEUCJP:
		return japanese.EUCJP.NewDecoder()
	default:
		// replaces invalid sequences with U+FFFD
		return unicode.UTF8.NewDecoder()
	}
}

// EncodingResolver detects a buffer's character encoding and decodes it to UTF-8.
// It is safe for concurrent use.
type EncodingResolver struct {
	detector *chardet.Detector
	log      *logrus.Logger
}

func NewEncodingResolver(log *logrus.Logger) *EncodingResolver {
	return &EncodingResolver{
		detector: chardet.NewTextDetector(),
		log:      log,
	}
}

// Decode never fails: anything it cannot classify is decoded as lossy UTF-8.
func (r *EncodingResolver) Decode(data []byte) EncodingDecision {
	if len(data) == 0 {
		return EncodingDecision{Encoding: EncodingUTF8, Label: "UTF-8"}
	}

	var label string
	enc := EncodingFallback
	if res, err := r.detector.DetectBest(data); err == nil && res != nil {
		label = res.Charset
		enc = encodingFromCharset(res.Charset)
	}

	// plain ASCII is usually reported as ISO-8859-1
	if enc == EncodingFallback && utf8.Valid(data) {
		enc = EncodingUTF8
	}

	if enc == EncodingUTF8 {
		return EncodingDecision{Encoding: enc, Label: label, Text: string(data)}
	}

	text, err := enc.decoder().Bytes(data)
	if err != nil && enc != EncodingFallback {
		// a legacy decoder gave up part way; degrade to lossy UTF-8
		r.log.WithField("encoding", label).Debugf("decode failed, falling back to UTF-8: %v", err)
		enc = EncodingFallback
		text, _ = EncodingFallback.decoder().Bytes(data)
	}
	if enc == EncodingFallback {
		r.log.WithField("encoding", label).Debug("unrecognized encoding, decoding as UTF-8")
	}
	return EncodingDecision{Encoding: enc, Label: label, Text: string(text)}
}
