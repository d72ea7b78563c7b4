package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "title element",
			doc:  `<html><head><title>Example Domain</title></head><body></body></html>`,
			want: "Example Domain",
		},
		{
			name: "whitespace collapsed",
			doc:  "<html><head><title>\n  Example \t Domain\n</title></head></html>",
			want: "Example Domain",
		},
		{
			name: "entities decoded",
			doc:  `<title>Tom &amp; Jerry</title>`,
			want: "Tom & Jerry",
		},
		{
			name: "og fallback",
			doc:  `<html><head><meta property="og:title" content="Open Graph"></head></html>`,
			want: "Open Graph",
		},
		{
			name: "twitter fallback",
			doc:  `<html><head><meta name="twitter:title" content="Tweet Title"></head></html>`,
			want: "Tweet Title",
		},
		{
			name: "title beats og",
			doc:  `<html><head><meta property="og:title" content="OG"><title>Real</title></head></html>`,
			want: "Real",
		},
		{
			name: "blank title falls back",
			doc:  `<html><head><title>   </title><meta property="og:title" content="OG"></head></html>`,
			want: "OG",
		},
		{
			name: "svg title ignored",
			doc:  `<html><body><svg><title>icon</title></svg></body></html>`,
			want: "",
		},
		{
			name: "latin1 charset",
			doc:  "<html><head><meta charset=\"iso-8859-1\"><title>Caf\xe9</title></head></html>",
			want: "Café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTitle(strings.NewReader(tt.doc), "")
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestExtractTitleNoDocument(t *testing.T) {
	got, err := ExtractTitle(strings.NewReader(""), "text/html")
	require.NoError(t, err)
	assert.Nil(t, got)
}
