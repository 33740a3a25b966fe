package youtube

import (
	"net/url"
	"strings"
	"testing"
)

const cookieFile = `# Netscape HTTP Cookie File
# This is a generated file! Do not edit.

.youtube.com	TRUE	/	TRUE	1893456000	SID	sid-value
#HttpOnly_.youtube.com	TRUE	/	TRUE	1893456000	HSID	hsid-value
music.youtube.com	FALSE	/	FALSE	0	PREF	f6=40000000
broken line without tabs
.google.com	TRUE	/	TRUE	0	NID	nid-value
`

func TestParseNetscapeCookies(t *testing.T) {
	cookies, err := ParseNetscapeCookies(strings.NewReader(cookieFile))
	if err != nil {
		t.Fatalf("ParseNetscapeCookies() error = %v", err)
	}
	if len(cookies) != 4 {
		t.Fatalf("len(cookies) = %d, want 4", len(cookies))
	}

	tests := []struct {
		index    int
		name     string
		domain   string
		secure   bool
		httpOnly bool
		expires  bool
	}{
		{0, "SID", ".youtube.com", true, false, true},
		{1, "HSID", ".youtube.com", true, true, true},
		{2, "PREF", "music.youtube.com", false, false, false},
		{3, "NID", ".google.com", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cookies[tt.index]
			if c.Name != tt.name || c.Domain != tt.domain || c.Secure != tt.secure || c.HttpOnly != tt.httpOnly {
				t.Errorf("cookie = %+v", c)
			}
			if c.Expires.IsZero() == tt.expires {
				t.Errorf("Expires = %v, want set=%v", c.Expires, tt.expires)
			}
		})
	}
}

func TestNewCookieJar(t *testing.T) {
	cookies, err := ParseNetscapeCookies(strings.NewReader(cookieFile))
	if err != nil {
		t.Fatal(err)
	}

	jar, err := newCookieJar(cookies)
	if err != nil {
		t.Fatalf("newCookieJar() error = %v", err)
	}

	watch, _ := url.Parse("https://www.youtube.com/watch?v=" + rickVideoID)
	names := map[string]bool{}
	for _, c := range jar.Cookies(watch) {
		names[c.Name] = true
	}
	if !names["SID"] || !names["HSID"] || names["NID"] {
		t.Errorf("cookies for www.youtube.com = %v", names)
	}
}

func TestCookieHeader(t *testing.T) {
	cookies, err := ParseNetscapeCookies(strings.NewReader(cookieFile))
	if err != nil {
		t.Fatal(err)
	}

	want := "SID=sid-value; HSID=hsid-value; PREF=f6=40000000; NID=nid-value"
	if got := cookieHeader(cookies); got != want {
		t.Errorf("cookieHeader() = %q, want %q", got, want)
	}
	if got := cookieHeader(nil); got != "" {
		t.Errorf("cookieHeader(nil) = %q", got)
	}
}
