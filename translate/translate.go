// Package translate formats user visible messages for the host locale.
package translate

import (
	"sync"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	printer atomic.Pointer[message.Printer]
	once    sync.Once
)

// hostLocales returns the preferred locales of the host, falling back to en-US.
func hostLocales() (locales []string) {
	locales, err := locale.GetLocales()
	if err != nil || len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// SetLanguage selects the message language, overriding the host locale.
// An empty list restores the host preference.
func SetLanguage(languages ...string) {
	once.Do(func() {})

	if len(languages) == 0 {
		languages = hostLocales()
	}

	printer.Store(message.NewPrinter(message.MatchLanguage(languages...)))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	once.Do(func() {
		printer.Store(message.NewPrinter(message.MatchLanguage(hostLocales()...)))
	})

	return printer.Load().Sprintf(key, args...)
}
