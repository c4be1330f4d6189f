package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator holds the messages of one language.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator reads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	t.lang = langCode
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the message for key, or key itself when it is unknown.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Lang() string { return t.lang }

// Bundle picks a Translator from an Accept-Language header.
type Bundle struct {
	def    *Translator
	byLang map[string]*Translator
}

// NewBundle loads def and every extra language. def is used when no
// requested language is available.
func NewBundle(fsys fs.FS, def string, langs ...string) (*Bundle, error) {
	b := &Bundle{byLang: make(map[string]*Translator)}
	for _, l := range append([]string{def}, langs...) {
		t, err := NewTranslator(fsys, l)
		if err != nil {
			return nil, err
		}
		b.byLang[l] = t
	}
	b.def = b.byLang[def]
	return b, nil
}

// For parses a header such as "en-US,en;q=0.9,fr;q=0.8". Quality values
// are ignored; tags are tried in the order given.
func (b *Bundle) For(acceptLanguage string) *Translator {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if len(tag) < 2 {
			continue
		}
		if t, ok := b.byLang[strings.ToLower(tag[:2])]; ok {
			return t
		}
	}
	return b.def
}
