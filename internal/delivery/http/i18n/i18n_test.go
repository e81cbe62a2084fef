package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		lang   string
		accept string
		want   language.Tag
	}{
		{name: "default", want: language.English},
		{name: "query wins", lang: "ar", accept: "en-US", want: language.Arabic},
		{name: "regional query", lang: "ar-EG", want: language.Arabic},
		{name: "header", accept: "ar-SA,ar;q=0.9,en;q=0.8", want: language.Arabic},
		{name: "header weights", accept: "fr;q=0.9,en;q=0.8,ar;q=0.1", want: language.English},
		{name: "unsupported query falls to header", lang: "fr", accept: "ar", want: language.Arabic},
		{name: "garbage", lang: "!!", accept: "???", want: language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Negotiate(tt.lang, tt.accept); got != tt.want {
				t.Errorf("Negotiate(%q, %q) = %v, want %v", tt.lang, tt.accept, got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		tag      language.Tag
		code     string
		fallback string
		want     string
	}{
		{name: "arabic", tag: language.Arabic, code: "level_not_found", fallback: "level not found", want: "المستوى غير موجود"},
		{name: "english uses fallback", tag: language.English, code: "level_not_found", fallback: "level not found", want: "level not found"},
		{name: "unknown code", tag: language.Arabic, code: "no_such_code", fallback: "something", want: "something"},
		{name: "empty code", tag: language.Arabic, fallback: "raw", want: "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.tag, tt.code, tt.fallback); got != tt.want {
				t.Errorf("Message = %q, want %q", got, tt.want)
			}
		})
	}
}
