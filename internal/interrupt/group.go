package interrupt

import "github.com/hammamikhairi/voicenotify/internal/domain"

// Compile-time interface check.
var _ domain.InterruptDetector = Group(nil)

// Group arms several detectors as one.
type Group []domain.InterruptDetector

func (g Group) Enable() {
	for _, d := range g {
		d.Enable()
	}
}

func (g Group) Disable() {
	for _, d := range g {
		d.Disable()
	}
}

func (g Group) SetHandler(fn func()) {
	for _, d := range g {
		d.SetHandler(fn)
	}
}
