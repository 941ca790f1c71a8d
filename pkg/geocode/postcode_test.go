package geocode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostcode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"SP4 7DE", "SP4 7DE", false},
		{"sp47de", "SP4 7DE", false},
		{"  sw1a   1aa ", "SW1A 1AA", false},
		{"M1 1AE", "M1 1AE", false},
		{"B33 8TH", "B33 8TH", false},
		{"EC1A 1BB", "EC1A 1BB", false},
		{"", "", true},
		{"SP4", "", true},
		{"12345", "", true},
		{"SP4 7D3", "", true},
		{"ABCDEFGH", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePostcode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				var nf *NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, tt.in, nf.Postcode)
				assert.True(t, errors.Is(err, ErrInvalidPostcode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNotFoundError_Message(t *testing.T) {
	assert.Equal(t, `geocode: postcode "ZZ9 9ZZ" not found`, (&NotFoundError{Postcode: "ZZ9 9ZZ"}).Error())
	assert.Contains(t, (&NotFoundError{Postcode: "x", Err: ErrInvalidPostcode}).Error(), "invalid postcode")
}
