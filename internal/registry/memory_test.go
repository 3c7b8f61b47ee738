package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/voicenotify/internal/domain"
	"github.com/hammamikhairi/voicenotify/internal/logger"
)

func TestMemoryRegistry(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	defaultOn := true
	reg := NewMemory(log, WithDefaultEnabled(func() bool { return defaultOn }))
	ctx := context.Background()

	// First sight registers.
	app, err := reg.LookupOrCreate(ctx, "com.example.mail")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if app.Label != "Mail" || !app.Enabled {
		t.Fatalf("unexpected app %+v", app)
	}

	// New apps follow the current default.
	defaultOn = false
	chat, err := reg.LookupOrCreate(ctx, "com.example.chat")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if chat.Enabled {
		t.Fatal("expected new app to start disabled")
	}

	// Existing apps keep their flag.
	again, _ := reg.LookupOrCreate(ctx, "com.example.mail")
	if !again.Enabled {
		t.Fatal("existing app changed on lookup")
	}

	// SetEnabled.
	if err := reg.SetEnabled(ctx, "com.example.mail", false); err != nil {
		t.Fatalf("set enabled: %v", err)
	}
	again, _ = reg.LookupOrCreate(ctx, "com.example.mail")
	if again.Enabled {
		t.Fatal("expected mail to be disabled")
	}

	if err := reg.SetEnabled(ctx, "nope", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// List is sorted by label.
	apps, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 || apps[0].Label != "Chat" || apps[1].Label != "Mail" {
		t.Fatalf("unexpected list %+v", apps)
	}
}

func TestLabelFor(t *testing.T) {
	cases := map[string]string{
		"com.example.mail": "Mail",
		"sms":              "Sms",
		"trailing.":        "Trailing.",
		"":                 "",
	}
	for in, want := range cases {
		if got := LabelFor(in); got != want {
			t.Errorf("LabelFor(%q) = %q, want %q", in, got, want)
		}
	}
}
