package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestParseSpecifier(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantLocation string
		wantRef      string
		wantKind     domain.RefKind
		wantString   string
	}{
		{
			name:         "https with branch",
			raw:          "https://example.com/org/child.git#main",
			wantLocation: "https://example.com/org/child.git",
			wantRef:      "main",
			wantKind:     domain.RefSymbolic,
			wantString:   "https://example.com/org/child.git#main",
		},
		{
			name:         "git+ssh with tag",
			raw:          "git+ssh://git@example.com/org/child.git#v1.2.0",
			wantLocation: "git+ssh://git@example.com/org/child.git",
			wantRef:      "v1.2.0",
			wantKind:     domain.RefSymbolic,
			wantString:   "git+ssh://git@example.com/org/child.git#v1.2.0",
		},
		{
			name:         "file with full commit",
			raw:          "file:///tmp/repos/child.git#0123456789abcdef0123456789abcdef01234567",
			wantLocation: "file:///tmp/repos/child.git",
			wantRef:      "0123456789abcdef0123456789abcdef01234567",
			wantKind:     domain.RefFullCommit,
			wantString:   "file:///tmp/repos/child.git#0123456789abcdef0123456789abcdef01234567",
		},
		{
			name:         "git protocol with abbreviated commit",
			raw:          "git://example.com/child.git#deadbeef",
			wantLocation: "git://example.com/child.git",
			wantRef:      "deadbeef",
			wantKind:     domain.RefAbbrevCommit,
			wantString:   "git://example.com/child.git#deadbeef",
		},
		{
			name:         "omitted ref",
			raw:          "https://example.com/child.git",
			wantLocation: "https://example.com/child.git",
			wantKind:     domain.RefDefault,
			wantString:   "https://example.com/child.git",
		},
		{
			name:         "slashed branch",
			raw:          "git+https://example.com/child.git#feature/x",
			wantLocation: "git+https://example.com/child.git",
			wantRef:      "feature/x",
			wantKind:     domain.RefSymbolic,
			wantString:   "git+https://example.com/child.git#feature/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := domain.ParseSpecifier(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, domain.SourceGit, spec.Kind)
			assert.Equal(t, tt.wantLocation, spec.Location)
			assert.Equal(t, tt.wantRef, spec.Ref.String())
			assert.Equal(t, tt.wantKind, spec.Ref.Kind())
			assert.Equal(t, tt.wantString, spec.String())
			assert.Equal(t, tt.raw, spec.Raw)
		})
	}
}

func TestParseSpecifier_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "no scheme", raw: "example.com/child.git#main"},
		{name: "unknown transport", raw: "ftp://example.com/child.git#main"},
		{name: "missing host", raw: "https:///child.git#main"},
		{name: "missing .git suffix", raw: "https://example.com/child#main"},
		{name: "empty ref", raw: "https://example.com/child.git#"},
		{name: "option-like ref", raw: "https://example.com/child.git#--upload-pack=evil"},
		{name: "ref with dotdot", raw: "https://example.com/child.git#a..b"},
		{name: "ref with space", raw: "https://example.com/child.git#a b"},
		{name: "ref with reflog syntax", raw: "https://example.com/child.git#main@{1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseSpecifier(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedSpecifier)

			var zErr *zerr.Error
			require.True(t, errors.As(err, &zErr))
			assert.Equal(t, tt.raw, zErr.Metadata()["specifier"])
		})
	}
}

func TestSpecifier_TransportURL(t *testing.T) {
	spec, err := domain.ParseSpecifier("git+https://example.com/org/child.git#main")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/org/child.git", spec.TransportURL())
	assert.Equal(t, "child", spec.DefaultName())
}

func TestIsGitSpecifier(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "https://example.com/child.git#main", want: true},
		{raw: "git+ssh://example.com/child.git", want: true},
		{raw: "git+anything", want: true},
		{raw: "file:///tmp/child.git", want: true},
		{raw: "^1.2.0", want: false},
		{raw: "latest", want: false},
		{raw: "s3://bucket/child.tgz", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsGitSpecifier(tt.raw))
		})
	}
}

func TestRef_Name(t *testing.T) {
	assert.Equal(t, "HEAD", domain.NewRef("").Name())
	assert.Equal(t, "main", domain.NewRef("main").Name())
	assert.True(t, domain.NewRef("").IsDefault())
	assert.Equal(t, "abbreviated-commit", domain.NewRef("cafe").Kind().String())
}
