package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"telegram-vpn-shop/internal/domain"
)

//go:embed locales
var LocalesFS embed.FS

// Translator serves message texts for one language. Immutable after
// construction.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(langCode, data)
	if err != nil {
		return nil, fmt.Errorf("parse translation file %s: %w", filePath, err)
	}
	return t, nil
}

func newTranslatorFromBytes(langCode string, data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContent, err)
	}
	return &Translator{lang: langCode, translations: translations}, nil
}

func (t *Translator) Lang() string { return t.lang }

// Resolve returns the raw text for key. A missing key is a content
// fault, never a silent default.
func (t *Translator) Resolve(key string) (string, error) {
	text, ok := t.translations[key]
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", t.lang, key, domain.ErrNotFound)
	}
	return text, nil
}

// T resolves and formats key, falling back to the key itself when it
// is absent. Use for button labels and captions where a raw key is an
// acceptable degraded rendering; flows that must distinguish missing
// content use Resolve.
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

// Store holds one Translator per supported language and answers
// lookups with a default-language fallback for unknown codes.
type Store struct {
	bundles  map[string]*Translator
	fallback string
}

// NewStore loads every language in langs from fsys. The first language
// that fails to load aborts startup; malformed locale data is a
// non-recoverable configuration fault.
func NewStore(fsys fs.FS, langs []string, fallback string) (*Store, error) {
	s := &Store{bundles: make(map[string]*Translator, len(langs)), fallback: fallback}
	for _, lang := range langs {
		t, err := NewTranslator(fsys, lang)
		if err != nil {
			return nil, err
		}
		s.bundles[lang] = t
	}
	if _, ok := s.bundles[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q not loaded: %w", fallback, domain.ErrNotFound)
	}
	return s, nil
}

// Bundle returns the Translator for lang, or the fallback bundle for
// an unsupported code.
func (s *Store) Bundle(lang string) *Translator {
	if t, ok := s.bundles[lang]; ok {
		return t
	}
	return s.bundles[s.fallback]
}

// Resolve looks key up in lang (with language fallback).
func (s *Store) Resolve(lang, key string) (string, error) {
	return s.Bundle(lang).Resolve(key)
}
