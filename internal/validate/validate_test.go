package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare host", in: "https://example.com", want: "https://example.com"},
		{name: "trailing slash", in: "https://example.com/", want: "https://example.com"},
		{name: "upper-case scheme and host", in: "HTTPS://Example.COM/Docs/", want: "https://example.com/Docs"},
		{name: "path case kept", in: "https://example.com/A/b", want: "https://example.com/A/b"},
		{name: "query kept", in: "https://example.com/search/?q=Go", want: "https://example.com/search?q=Go"},
		{name: "surrounding whitespace", in: "  https://example.com/x  ", want: "https://example.com/x"},
		{name: "port kept", in: "http://LOCALHOST:8080/", want: "http://localhost:8080"},
		{name: "escaped slash kept", in: "https://example.com/a%2Fb/", want: "https://example.com/a%2Fb"},
		{name: "escaped trailing slash kept", in: "https://example.com/a%2F/", want: "https://example.com/a%2F"},
		{name: "plain slash", in: "https://example.com/a/b", want: "https://example.com/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"not-a-url",
		"example.com/path",
		"/relative/path",
		"mailto:someone@example.com",
		"https://",
		"http://[::1",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Normalize(in)
			assert.ErrorIs(t, err, domain.ErrMalformedURL)
		})
	}
}

func TestValidateAcceptsIntoEmptyCollection(t *testing.T) {
	v, err := Validate(domain.LinkInput{URL: " https://example.com "}, nil)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", v.URL)
	assert.Equal(t, "https://example.com", v.Normalized)
	assert.Nil(t, v.Title)
}

func TestValidateMalformed(t *testing.T) {
	_, err := Validate(domain.LinkInput{URL: "not-a-url"}, nil)

	assert.ErrorIs(t, err, domain.ErrMalformedURL)
	assert.True(t, domain.IsValidation(err))
}

func TestValidateDuplicate(t *testing.T) {
	existing := domain.Collection{
		{ID: "first", URL: "https://example.com/docs"},
		{ID: "second", URL: "https://go.dev"},
	}

	tests := []string{
		"https://example.com/docs",
		"https://EXAMPLE.com/docs/",
		"HTTPS://example.com/docs//",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := Validate(domain.LinkInput{URL: in}, existing)

			var dup *domain.DuplicateLinkError
			require.True(t, errors.As(err, &dup), "expected duplicate, got %v", err)
			assert.Equal(t, "first", dup.ExistingID)
		})
	}
}

func TestValidateDistinctPathCase(t *testing.T) {
	existing := domain.Collection{{ID: "first", URL: "https://example.com/Docs"}}

	_, err := Validate(domain.LinkInput{URL: "https://example.com/docs"}, existing)
	assert.NoError(t, err)
}

func TestValidateExceptIgnoresSelf(t *testing.T) {
	existing := domain.Collection{
		{ID: "self", URL: "https://example.com"},
		{ID: "other", URL: "https://go.dev"},
	}

	_, err := ValidateExcept(domain.LinkInput{URL: "https://example.com/"}, existing, "self")
	assert.NoError(t, err)

	_, err = ValidateExcept(domain.LinkInput{URL: "https://go.dev"}, existing, "self")
	assert.ErrorIs(t, err, domain.ErrDuplicateLink)
}

func TestValidateSkipsMalformedStoredURLs(t *testing.T) {
	existing := domain.Collection{{ID: "broken", URL: "::nope::"}}

	_, err := Validate(domain.LinkInput{URL: "https://example.com"}, existing)
	assert.NoError(t, err)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Nil(t, NormalizeTitle(nil))
	assert.Nil(t, NormalizeTitle(domain.StringPtr("  \t\n ")))

	got := NormalizeTitle(domain.StringPtr("  Example \n\t Domain  "))
	require.NotNil(t, got)
	assert.Equal(t, "Example Domain", *got)
}

func TestValidateNormalizesTitle(t *testing.T) {
	v, err := Validate(domain.LinkInput{URL: "https://example.com", Title: domain.StringPtr(" My   Page ")}, nil)

	require.NoError(t, err)
	require.NotNil(t, v.Title)
	assert.Equal(t, "My Page", *v.Title)
}

func TestCheckNotDuplicate(t *testing.T) {
	existing := domain.Collection{{ID: "a", URL: "https://example.com/landing"}}

	assert.NoError(t, CheckNotDuplicate("https://example.com/other", existing, ""))
	assert.ErrorIs(t, CheckNotDuplicate("https://example.com/landing/", existing, ""), domain.ErrDuplicateLink)
	assert.NoError(t, CheckNotDuplicate("https://example.com/landing", existing, "a"))
	assert.ErrorIs(t, CheckNotDuplicate("nope", existing, ""), domain.ErrMalformedURL)

	escaped := domain.Collection{{ID: "x", URL: "https://example.com/a%2Fb"}}
	assert.NoError(t, CheckNotDuplicate("https://example.com/a/b", escaped, ""))
	assert.ErrorIs(t, CheckNotDuplicate("https://example.com/a%2Fb/", escaped, ""), domain.ErrDuplicateLink)
}

func TestCollection(t *testing.T) {
	ok := domain.Collection{
		{ID: "a", URL: "https://a.example", Status: domain.StatusReachable},
		{ID: "b", URL: "https://b.example"},
	}
	assert.NoError(t, Collection(ok))
	assert.NoError(t, Collection(nil))

	assert.Error(t, Collection(domain.Collection{{ID: "a", URL: "https://a.example"}, {ID: "a", URL: "https://b.example"}}))
	assert.Error(t, Collection(domain.Collection{{ID: "", URL: "https://a.example"}}))
	assert.ErrorIs(t, Collection(domain.Collection{{ID: "a", URL: "bad"}}), domain.ErrMalformedURL)
	assert.Error(t, Collection(domain.Collection{{ID: "a", URL: "https://a.example", Status: "weird"}}))
}
