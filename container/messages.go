package container

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// MessageSource holds localized message tables keyed by locale and
// message key. Tables are loaded at startup from YAML files of the
// form:
//
//	default_locale: en
//	locales:
//	  en:
//	    button.save: Save
//	  de:
//	    button.save: Speichern
//
// Lookups for an unknown locale fall back to the default locale.
type MessageSource struct {
	mu            sync.RWMutex
	defaultLocale string
	tables        map[string]map[string]string
}

type messageFile struct {
	DefaultLocale string                       `yaml:"default_locale"`
	Locales       map[string]map[string]string `yaml:"locales"`
}

// NewMessageSource creates an empty message source with the given
// default locale.
func NewMessageSource(defaultLocale string) *MessageSource {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &MessageSource{
		defaultLocale: defaultLocale,
		tables:        make(map[string]map[string]string),
	}
}

// LoadMessages builds a message source from one or more YAML resource
// files. Later files override earlier ones key by key.
func LoadMessages(paths ...string) (*MessageSource, error) {
	src := NewMessageSource("")
	for _, path := range paths {
		if err := src.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// LoadFile merges a YAML message resource file into the source.
func (s *MessageSource) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read message resource %s: %w", path, err)
	}

	var file messageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse message resource %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if file.DefaultLocale != "" {
		s.defaultLocale = file.DefaultLocale
	}
	for locale, table := range file.Locales {
		dst, ok := s.tables[locale]
		if !ok {
			dst = make(map[string]string, len(table))
			s.tables[locale] = dst
		}
		for key, msg := range table {
			dst[key] = msg
		}
	}
	return nil
}

// Add registers a single message. Intended for tests and programmatic
// setup.
func (s *MessageSource) Add(locale, key, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[locale]
	if !ok {
		table = make(map[string]string)
		s.tables[locale] = table
	}
	table[key] = message
}

// DefaultLocale returns the fallback locale.
func (s *MessageSource) DefaultLocale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultLocale
}

// Message resolves a key for the given locale, falling back to the
// default locale. Args, when present, are applied with fmt.Sprintf.
func (s *MessageSource) Message(locale, key string, args ...any) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.lookup(locale, key)
	if !ok {
		return "", false
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return msg, true
}

func (s *MessageSource) lookup(locale, key string) (string, bool) {
	if table, ok := s.tables[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg, true
		}
	}
	if locale == s.defaultLocale {
		return "", false
	}
	if table, ok := s.tables[s.defaultLocale]; ok {
		msg, ok := table[key]
		return msg, ok
	}
	return "", false
}

// LookupKey performs a reverse lookup: given a localized message value,
// it returns the message key it was rendered from. Used by lookup
// dispatch actions to map a submitted button label back to a method
// key.
func (s *MessageSource) LookupKey(locale, message string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if table, ok := s.tables[locale]; ok {
		for key, msg := range table {
			if msg == message {
				return key, true
			}
		}
	}
	if locale != s.defaultLocale {
		if table, ok := s.tables[s.defaultLocale]; ok {
			for key, msg := range table {
				if msg == message {
					return key, true
				}
			}
		}
	}
	return "", false
}

// MessageAccessor wraps a MessageSource with a fixed locale for
// convenient access from actions.
type MessageAccessor struct {
	source *MessageSource
	locale string
}

// NewMessageAccessor creates an accessor bound to the given locale.
// An empty locale binds to the source's default locale.
func NewMessageAccessor(source *MessageSource, locale string) *MessageAccessor {
	if locale == "" {
		locale = source.DefaultLocale()
	}
	return &MessageAccessor{source: source, locale: locale}
}

// Locale returns the bound locale.
func (a *MessageAccessor) Locale() string {
	return a.locale
}

// Source returns the underlying message source.
func (a *MessageAccessor) Source() *MessageSource {
	return a.source
}

// Message resolves a key in the bound locale. Missing keys resolve to
// the key itself, so templates degrade visibly instead of erroring.
func (a *MessageAccessor) Message(key string, args ...any) string {
	msg, ok := a.source.Message(a.locale, key, args...)
	if !ok {
		return key
	}
	return msg
}

// MessageOr resolves a key in the bound locale, returning def when the
// key is absent.
func (a *MessageAccessor) MessageOr(key, def string, args ...any) string {
	msg, ok := a.source.Message(a.locale, key, args...)
	if !ok {
		return def
	}
	return msg
}
