//go:build !integration

package i18n

import (
	"errors"
	"testing"

	"telegram-vpn-shop/internal/domain"
)

func TestTranslator(t *testing.T) {
	contentBytes := []byte("greeting: Привет\nwelcome_user: Привет, %s")

	translator, err := newTranslatorFromBytes("ru", contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should resolve a simple key", func(t *testing.T) {
		got, err := translator.Resolve("greeting")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != "Привет" {
			t.Errorf("wanted 'Привет', got '%s'", got)
		}
	})

	t.Run("should fail with ErrNotFound for an unknown key", func(t *testing.T) {
		_, err := translator.Resolve("nonexistent_key")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		_, err := newTranslatorFromBytes("ru", []byte("greeting: [unterminated"))
		if !errors.Is(err, domain.ErrContent) {
			t.Errorf("expected ErrContent, got %v", err)
		}
	})

	t.Run("T should format arguments", func(t *testing.T) {
		got := translator.T("welcome_user", "Ali")
		if got != "Привет, Ali" {
			t.Errorf("wanted 'Привет, Ali', got '%s'", got)
		}
	})

	t.Run("T should return key if not found", func(t *testing.T) {
		if got := translator.T("missing"); got != "missing" {
			t.Errorf("wanted 'missing', got '%s'", got)
		}
	})
}

func TestStore(t *testing.T) {
	store, err := NewStore(LocalesFS, []string{"en", "ru"}, "ru")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	t.Run("every bundled key resolves to non-empty text", func(t *testing.T) {
		for _, lang := range []string{"en", "ru"} {
			b := store.Bundle(lang)
			for key := range b.translations {
				text, err := b.Resolve(key)
				if err != nil {
					t.Fatalf("%s/%s: %v", lang, key, err)
				}
				if text == "" {
					t.Errorf("%s/%s resolved to empty text", lang, key)
				}
			}
		}
	})

	t.Run("unknown language falls back to default", func(t *testing.T) {
		if got := store.Bundle("fr").Lang(); got != "ru" {
			t.Errorf("expected fallback 'ru', got '%s'", got)
		}
	})

	t.Run("languages share the same key set", func(t *testing.T) {
		en, ru := store.Bundle("en"), store.Bundle("ru")
		for key := range ru.translations {
			if _, err := en.Resolve(key); err != nil {
				t.Errorf("key %q present in ru but missing in en", key)
			}
		}
		for key := range en.translations {
			if _, err := ru.Resolve(key); err != nil {
				t.Errorf("key %q present in en but missing in ru", key)
			}
		}
	})
}
