package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLengthsRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		opts []int
		csv  string
	}{
		{"typical", []int{3, 5, 7}, "3,5,7"},
		{"single", []int{10}, "10"},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.csv, encodeSetLengths(tc.opts))
			assert.Equal(t, tc.opts, decodeSetLengths(tc.csv))
		})
	}
}

func TestDecodeSetLengthsSkipsMalformedEntries(t *testing.T) {
	assert.Equal(t, []int{3, 7}, decodeSetLengths("3, x ,7"))
	assert.Nil(t, decodeSetLengths("   "))
}
