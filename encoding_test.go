package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

const japaneseSample = "<html><head><title>会社概要</title></head><body>" +
	"わたしたちはこのまちでながくしごとをしてきました。これからもよろしくおねがいします。" +
	"ここにはあたらしいおしらせがあります。まいにちのくらしにやくだつじょうほうをおとどけします。" +
	"</body></html>"

func TestDecodeUTF8(t *testing.T) {
	r := NewEncodingResolver(quietLogger())

	got := r.Decode([]byte(japaneseSample))

	assert.Equal(t, EncodingUTF8, got.Encoding)
	assert.Equal(t, japaneseSample, got.Text)
}

func TestDecodeEmpty(t *testing.T) {
	r := NewEncodingResolver(quietLogger())

	got := r.Decode(nil)

	assert.Equal(t, EncodingUTF8, got.Encoding)
	assert.Equal(t, "", got.Text)
}

func TestDecodeASCII(t *testing.T) {
	r := NewEncodingResolver(quietLogger())
	text := "<html><head><title>Plain</title></head></html>"

	got := r.Decode([]byte(text))

	assert.Equal(t, text, got.Text)
	assert.Equal(t, EncodingUTF8, got.Encoding)
	assert.Equal(t, "Plain", extractTitle(got.Text))
}

func TestDecodeASCIIDoesNotLogFallback(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := newLogger(&buf, "", true)
	require.NoError(t, err)
	defer closer.Close()
	r := NewEncodingResolver(log)

	r.Decode([]byte("body { color: red; }\n"))
	assert.NotContains(t, buf.String(), "unrecognized encoding")

	r.Decode([]byte{0xff, 0xfe, 0x80, 0x81})
	assert.Contains(t, buf.String(), "unrecognized encoding")
}

func TestDecodeJapaneseEncodings(t *testing.T) {
	sample := strings.Repeat(japaneseSample, 4)
	tests := []struct {
		name string
		want Encoding
		data func() ([]byte, error)
	}{
		{"shift_jis", EncodingShiftJIS, func() ([]byte, error) {
			return japanese.ShiftJIS.NewEncoder().Bytes([]byte(sample))
		}},
		{"iso-2022-jp", EncodingISO2022JP, func() ([]byte, error) {
			return japanese.ISO2022JP.NewEncoder().Bytes([]byte(sample))
		}},
	}
	r := NewEncodingResolver(quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.data()
			require.NoError(t, err)

			got := r.Decode(data)

			assert.Equal(t, tt.want, got.Encoding)
			assert.Equal(t, sample, got.Text)
			assert.Equal(t, "会社概要", extractTitle(got.Text))
		})
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	data, err := japanese.EUCJP.NewEncoder().Bytes([]byte(japaneseSample))
	require.NoError(t, err)

	text, err := EncodingEUCJP.decoder().Bytes(data)
	require.NoError(t, err)
	assert.Equal(t, japaneseSample, string(text))
}

func TestDecodeInvalidBytes(t *testing.T) {
	r := NewEncodingResolver(quietLogger())
	inputs := [][]byte{
		{0xff, 0xfe, 0xfd, 0x80},
		{0xc3, 0x28, 0xa0, 0xa1},
		append([]byte("<title>x</title>"), 0xe2, 0x82),
	}
	for _, data := range inputs {
		assert.NotPanics(t, func() {
			got := r.Decode(data)
			assert.True(t, utf8.ValidString(got.Text))
		})
	}
}

func TestEncodingFromCharset(t *testing.T) {
	assert.Equal(t, EncodingUTF8, encodingFromCharset("UTF-8"))
	assert.Equal(t, EncodingShiftJIS, encodingFromCharset("Shift_JIS"))
	assert.Equal(t, EncodingISO2022JP, encodingFromCharset("ISO-2022-JP"))
	assert.Equal(t, EncodingEUCJP, encodingFromCharset("EUC-JP"))
	assert.Equal(t, EncodingFallback, encodingFromCharset("windows-1252"))
	assert.Equal(t, EncodingFallback, encodingFromCharset(""))
	assert.Equal(t, "fallback", EncodingFallback.String())
}
