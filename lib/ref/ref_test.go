// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bureau-foundation/rpds/lib/ref"
)

func TestParseDID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "plc", raw: "did:plc:ewvi7nxzyoun6zhxrhs64oiz"},
		{name: "web", raw: "did:web:example.com"},
		{name: "multiple-components", raw: "did:example:test:awdac:sdfsdfw"},
		// Accepted: empty segments are legal inside the identifier; only a
		// trailing ':' or '%' is rejected. Listed as invalid in some DID notes.
		{name: "consecutive-colons", raw: "did:example::::test"},
		{name: "percent-escape", raw: "did:web:localhost%3A8080"},
		{name: "percent-escape-at-end", raw: "did:example:a%41"},
		{name: "digits-in-method", raw: "did:m3thod:x"},
		{name: "id-symbols", raw: "did:example:A-b_c.d"},
		{name: "empty", raw: "", wantErr: true},
		{name: "prefix-only", raw: "did:", wantErr: true},
		{name: "wrong-prefix", raw: "dud:example:test", wantErr: true},
		{name: "uppercase-prefix", raw: "DID:example:test", wantErr: true},
		{name: "no-identifier-separator", raw: "did:example", wantErr: true},
		{name: "empty-method", raw: "did::test", wantErr: true},
		{name: "uppercase-method", raw: "did:Example:test", wantErr: true},
		{name: "empty-identifier", raw: "did:example:", wantErr: true},
		{name: "trailing-colon", raw: "did:example:test:", wantErr: true},
		{name: "space", raw: "did:example:te st", wantErr: true},
		{name: "slash", raw: "did:example:a/b", wantErr: true},
		{name: "incomplete-escape", raw: "did:example:a%4", wantErr: true},
		{name: "bare-percent", raw: "did:example:a%", wantErr: true},
		{name: "non-hex-escape", raw: "did:example:a%zz", wantErr: true},
		{name: "non-ascii", raw: "did:example:café", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			did, err := ref.ParseDID(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDID(%q) = %v, want error", tt.raw, did)
				}
				if !errors.Is(err, ref.ErrInvalidDID) {
					t.Errorf("error %v does not wrap ErrInvalidDID", err)
				}
				if ref.ValidateDID(tt.raw) == nil {
					t.Error("ValidateDID accepted input that ParseDID rejected")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDID(%q): %v", tt.raw, err)
			}
			if did.String() != tt.raw {
				t.Errorf("String() = %q, want %q", did.String(), tt.raw)
			}
			if did.IsZero() {
				t.Error("IsZero() = true for valid DID")
			}
		})
	}
}

func TestDIDParts(t *testing.T) {
	did := ref.MustParseDID("did:web:localhost%3A8080:user:alice")
	if did.Method() != "web" {
		t.Errorf("Method() = %q, want %q", did.Method(), "web")
	}
	if did.Identifier() != "localhost%3A8080:user:alice" {
		t.Errorf("Identifier() = %q, want %q", did.Identifier(), "localhost%3A8080:user:alice")
	}

	var zero ref.DID
	if !zero.IsZero() || zero.Method() != "" || zero.Identifier() != "" {
		t.Errorf("zero DID: IsZero=%v Method=%q Identifier=%q", zero.IsZero(), zero.Method(), zero.Identifier())
	}
}

func TestParseHandle(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "typical", raw: "alice.bsky.social"},
		{name: "two-labels", raw: "bsky.app"},
		{name: "single-letter-labels", raw: "a.b.co"},
		{name: "single-label", raw: "localhost"},
		{name: "single-letter-tld-only", raw: "x"},
		{name: "hyphen-interior", raw: "my-name.test"},
		{name: "digit-interior", raw: "a1b.example"},
		{name: "punycode", raw: "xn--ls8h.test"},
		{name: "tld-with-digits", raw: "example.c0m"},
		{name: "tld-ending-hyphen", raw: "example.co-"},
		{name: "max-label", raw: strings.Repeat("a", 63) + ".com"},
		{name: "max-length", raw: strings.Repeat("a.", 125) + "com"},
		{name: "empty", raw: "", wantErr: true},
		{name: "too-long", raw: strings.Repeat("a.", 126) + "co", wantErr: true},
		{name: "label-too-long", raw: strings.Repeat("a", 64) + ".com", wantErr: true},
		{name: "label-starts-with-digit", raw: "1abc.com", wantErr: true},
		{name: "label-ends-with-digit", raw: "abc1.com", wantErr: true},
		{name: "single-digit-label", raw: "1.com", wantErr: true},
		{name: "label-starts-with-hyphen", raw: "-ab.com", wantErr: true},
		{name: "label-ends-with-hyphen", raw: "ab-.com", wantErr: true},
		{name: "underscore", raw: "a_b.com", wantErr: true},
		{name: "uppercase-label", raw: "Alice.com", wantErr: true},
		{name: "tld-starts-with-digit", raw: "example.1com", wantErr: true},
		{name: "tld-uppercase", raw: "example.Com", wantErr: true},
		{name: "trailing-dot", raw: "example.com.", wantErr: true},
		{name: "leading-dot", raw: ".example.com", wantErr: true},
		{name: "empty-label", raw: "a..com", wantErr: true},
		{name: "colon", raw: "example.com:443", wantErr: true},
		{name: "did-string", raw: "did:plc:abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle, err := ref.ParseHandle(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHandle(%q) = %v, want error", tt.raw, handle)
				}
				if !errors.Is(err, ref.ErrInvalidHandle) {
					t.Errorf("error %v does not wrap ErrInvalidHandle", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHandle(%q): %v", tt.raw, err)
			}
			if handle.String() != tt.raw {
				t.Errorf("String() = %q, want %q", handle.String(), tt.raw)
			}
		})
	}
}

func TestParseATURI(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		authority string
		path      string
		query     string
		fragment  string
	}{
		{
			name:      "authority-only",
			raw:       "at://did:example:123",
			authority: "did:example:123",
		},
		{
			name:      "all-parts",
			raw:       "at://did:example:123/hello?query#fragment",
			authority: "did:example:123",
			path:      "/hello",
			query:     "query",
			fragment:  "fragment",
		},
		{
			name:      "path",
			raw:       "at://did:example:123/hello",
			authority: "did:example:123",
			path:      "/hello",
		},
		{
			name:      "root-path",
			raw:       "at://did:example:123/",
			authority: "did:example:123",
			path:      "/",
		},
		{
			name:      "no-query",
			raw:       "at://did:example:123/hello#fragment",
			authority: "did:example:123",
			path:      "/hello",
			fragment:  "fragment",
		},
		{
			name:      "no-fragment",
			raw:       "at://did:example:123/hello?query",
			authority: "did:example:123",
			path:      "/hello",
			query:     "query",
		},
		{
			name:      "nested-trailing-slash",
			raw:       "at://did:example:123/test/test/test/",
			authority: "did:example:123",
			path:      "/test/test/test/",
		},
		{
			name:      "nested",
			raw:       "at://did:example:123/test/test/test",
			authority: "did:example:123",
			path:      "/test/test/test",
		},
		{
			name:      "query-without-path",
			raw:       "at://did:example:123?q",
			authority: "did:example:123",
			query:     "q",
		},
		{
			name:      "fragment-without-path",
			raw:       "at://did:example:123#f",
			authority: "did:example:123",
			fragment:  "f",
		},
		{
			name:      "empty-query-and-fragment",
			raw:       "at://did:example:123/a?#",
			authority: "did:example:123",
			path:      "/a",
		},
		{
			name:      "handle-authority",
			raw:       "at://alice.bsky.social/app.bsky.feed.post/3k2a~x_y-z",
			authority: "alice.bsky.social",
			path:      "/app.bsky.feed.post/3k2a~x_y-z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := ref.ParseATURI(tt.raw)
			if err != nil {
				t.Fatalf("ParseATURI(%q): %v", tt.raw, err)
			}
			if uri.String() != tt.raw {
				t.Errorf("String() = %q, want %q", uri.String(), tt.raw)
			}
			if uri.AuthorityString() != tt.authority {
				t.Errorf("AuthorityString() = %q, want %q", uri.AuthorityString(), tt.authority)
			}
			if uri.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", uri.Path(), tt.path)
			}
			if uri.Query() != tt.query {
				t.Errorf("Query() = %q, want %q", uri.Query(), tt.query)
			}
			if uri.Fragment() != tt.fragment {
				t.Errorf("Fragment() = %q, want %q", uri.Fragment(), tt.fragment)
			}
			for _, part := range []string{uri.AuthorityString(), uri.Path(), uri.Query(), uri.Fragment()} {
				if !utf8.ValidString(part) {
					t.Errorf("part %q is not valid UTF-8", part)
				}
			}
		})
	}
}

func TestATURIAuthority(t *testing.T) {
	byDID := ref.MustParseATURI("at://did:plc:abc/app.bsky.feed.post/1")
	did, ok := byDID.Authority().DID()
	if !ok || did != ref.MustParseDID("did:plc:abc") {
		t.Errorf("Authority().DID() = (%v, %v), want (did:plc:abc, true)", did, ok)
	}

	byHandle := ref.MustParseATURI("at://alice.test")
	handle, ok := byHandle.Authority().Handle()
	if !ok || handle != ref.MustParseHandle("alice.test") {
		t.Errorf("Authority().Handle() = (%v, %v), want (alice.test, true)", handle, ok)
	}
}

func TestParseATURIErrors(t *testing.T) {
	prefix := "at://did:example:123/"
	tests := []struct {
		name  string
		raw   string
		cause error
	}{
		{name: "empty", raw: ""},
		{name: "scheme-only", raw: "at://"},
		{name: "wrong-scheme", raw: "http://did:example:123"},
		{name: "missing-slashes", raw: "at:did:example:123"},
		{name: "empty-authority-with-path", raw: "at:///hello"},
		{name: "empty-authority-with-query", raw: "at://?q"},
		{name: "space-in-path", raw: "at://did:example:123/hel lo"},
		{name: "percent-in-path", raw: "at://did:example:123/a%20b"},
		{name: "question-in-query", raw: "at://did:example:123/a?b?c"},
		{name: "hash-in-fragment", raw: "at://did:example:123/a#b#c"},
		{name: "slash-in-query", raw: "at://did:example:123?a/b"},
		{name: "invalid-handle-authority", raw: "at://1bad.com/x", cause: ref.ErrInvalidHandle},
		{name: "invalid-did-authority", raw: "at://did:example:/x", cause: ref.ErrInvalidDID},
		{name: "uppercase-handle-authority", raw: "at://Alice.test", cause: ref.ErrInvalidHandle},
		{name: "too-long", raw: prefix + strings.Repeat("a", 8192-len(prefix))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := ref.ParseATURI(tt.raw)
			if err == nil {
				t.Fatalf("ParseATURI(%q) = %v, want error", tt.raw, uri)
			}
			if !errors.Is(err, ref.ErrInvalidATURI) {
				t.Errorf("error %v does not wrap ErrInvalidATURI", err)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("error %v does not wrap %v", err, tt.cause)
			}
			if ref.ValidateATURI(tt.raw) == nil {
				t.Error("ValidateATURI accepted input that ParseATURI rejected")
			}
		})
	}
}

func TestParseATURILengthBoundary(t *testing.T) {
	prefix := "at://did:example:123/"
	raw := prefix + strings.Repeat("a", 8191-len(prefix))
	uri, err := ref.ParseATURI(raw)
	if err != nil {
		t.Fatalf("ParseATURI(8191 bytes): %v", err)
	}
	if len(uri.Path()) != 8191-len("at://did:example:123") {
		t.Errorf("Path() length = %d, want %d", len(uri.Path()), 8191-len("at://did:example:123"))
	}
}

func TestParseATIdentifier(t *testing.T) {
	t.Run("did", func(t *testing.T) {
		id, err := ref.ParseATIdentifier("did:plc:abc")
		if err != nil {
			t.Fatalf("ParseATIdentifier: %v", err)
		}
		if !id.IsDID() || id.IsHandle() {
			t.Errorf("IsDID=%v IsHandle=%v, want true/false", id.IsDID(), id.IsHandle())
		}
		if id.String() != "did:plc:abc" {
			t.Errorf("String() = %q", id.String())
		}
		if id != ref.IdentifierFromDID(ref.MustParseDID("did:plc:abc")) {
			t.Error("parsed identifier differs from IdentifierFromDID")
		}
	})

	t.Run("handle", func(t *testing.T) {
		id, err := ref.ParseATIdentifier("alice.test")
		if err != nil {
			t.Fatalf("ParseATIdentifier: %v", err)
		}
		if id.IsDID() || !id.IsHandle() {
			t.Errorf("IsDID=%v IsHandle=%v, want false/true", id.IsDID(), id.IsHandle())
		}
		if id != ref.IdentifierFromHandle(ref.MustParseHandle("alice.test")) {
			t.Error("parsed identifier differs from IdentifierFromHandle")
		}
	})

	t.Run("malformed_did_is_not_a_handle", func(t *testing.T) {
		_, err := ref.ParseATIdentifier("did:Example:x")
		if !errors.Is(err, ref.ErrInvalidDID) {
			t.Errorf("error = %v, want ErrInvalidDID", err)
		}
		if errors.Is(err, ref.ErrInvalidHandle) {
			t.Errorf("error = %v, must not fall back to handle parsing", err)
		}
	})

	t.Run("malformed_handle", func(t *testing.T) {
		_, err := ref.ParseATIdentifier("1abc.com")
		if !errors.Is(err, ref.ErrInvalidHandle) {
			t.Errorf("error = %v, want ErrInvalidHandle", err)
		}
	})
}

type identifiers struct {
	DID        ref.DID          `json:"did"`
	Handle     ref.Handle       `json:"handle"`
	URI        ref.ATURI        `json:"uri"`
	Identifier ref.ATIdentifier `json:"identifier"`
}

func TestJSONRoundTrip(t *testing.T) {
	original := identifiers{
		DID:        ref.MustParseDID("did:example:test:awdac:sdfsdfw"),
		Handle:     ref.MustParseHandle("a.b.co"),
		URI:        ref.MustParseATURI("at://did:example:123/hello?query#fragment"),
		Identifier: ref.MustParseATIdentifier("alice.bsky.social"),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"did":"did:example:test:awdac:sdfsdfw","handle":"a.b.co",` +
		`"uri":"at://did:example:123/hello?query#fragment","identifier":"alice.bsky.social"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var decoded identifiers
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("round-trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestUnmarshalTextRejectsWhatParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "did-trailing-colon", input: `{"did":"did:example:test:"}`, want: ref.ErrInvalidDID},
		{name: "did-empty", input: `{"did":""}`, want: ref.ErrInvalidDID},
		{name: "handle-digit-label", input: `{"handle":"1abc.com"}`, want: ref.ErrInvalidHandle},
		{name: "handle-empty", input: `{"handle":""}`, want: ref.ErrInvalidHandle},
		{name: "uri-bad-path", input: `{"uri":"at://did:example:123/a b"}`, want: ref.ErrInvalidATURI},
		{name: "uri-empty", input: `{"uri":""}`, want: ref.ErrInvalidATURI},
		{name: "identifier-bad-did", input: `{"identifier":"did:x:"}`, want: ref.ErrInvalidDID},
		{name: "identifier-empty", input: `{"identifier":""}`, want: ref.ErrInvalidHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded identifiers
			err := json.Unmarshal([]byte(tt.input), &decoded)
			if !errors.Is(err, tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestUnmarshalTextRejectsNonString(t *testing.T) {
	var decoded identifiers
	if err := json.Unmarshal([]byte(`{"did":{"method":"plc"}}`), &decoded); err == nil {
		t.Error("Unmarshal accepted a structured DID")
	}
}

func TestMustParsePanics(t *testing.T) {
	tests := []struct {
		name string
		call func()
	}{
		{"DID", func() { ref.MustParseDID("did:x:") }},
		{"Handle", func() { ref.MustParseHandle("1.com") }},
		{"ATURI", func() { ref.MustParseATURI("at://") }},
		{"ATIdentifier", func() { ref.MustParseATIdentifier("") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("did not panic")
				}
			}()
			tt.call()
		})
	}
}
