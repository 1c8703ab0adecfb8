package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futapay/relay/internal/encoding"
)

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		wantCharset encoding.Charset
		want        string
	}

	tests := []testCase{
		{
			name:        "UTF-8 passthrough",
			input:       []byte("country;label;code\nCOD;Orange Money RDC;ORANGE_COD\n"),
			wantCharset: encoding.CharsetUTF8,
			want:        "country;label;code\nCOD;Orange Money RDC;ORANGE_COD\n",
		},
		{
			name:        "UTF-8 BOM is stripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("ZMB;Zamtel;ZAMTEL_ZMB\n")...),
			wantCharset: encoding.CharsetUTF8BOM,
			want:        "ZMB;Zamtel;ZAMTEL_ZMB\n",
		},
		{
			// "Société" with é = 0xE9 in Windows-1252.
			name:  "Latin-1 family is decoded",
			input: []byte{'S', 'o', 'c', 'i', 0xE9, 't', 0xE9, ';', 'X', '\n'},
			want:  "Société;X\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, cs)
			}
		})
	}
}
