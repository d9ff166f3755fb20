package tray

import (
	"testing"

	"github.com/ayusman/gimbaltrack/internal/target"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		tier   target.Tier
		linkUp bool
		want   string
	}{
		{target.TierAccepted, true, "GT accepted"},
		{target.TierFallback, true, "GT fallback"},
		{target.TierNone, false, "GT none !"},
	}

	for _, tt := range tests {
		if got := Title(tt.tier, tt.linkUp); got != tt.want {
			t.Errorf("Title(%s, %v) = %q, want %q", tt.tier, tt.linkUp, got, tt.want)
		}
	}
}

func TestTargetLabel(t *testing.T) {
	if got := TargetLabel(target.TierNone, target.Point{X: 5, Y: 5}); got != "Target: none" {
		t.Errorf("TargetLabel(none) = %q", got)
	}
	if got := TargetLabel(target.TierRelaxed, target.Point{X: 119.6, Y: 40.2}); got != "Target: (120,40)" {
		t.Errorf("TargetLabel(relaxed) = %q", got)
	}
}

func TestTray_UpdateBeforeRun(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Error("tray should start enabled")
	}

	// No menu yet: Update must only record the text.
	tr.Update(target.TierAccepted, target.Point{X: 10, Y: 20}, true)
	if tr.title != "GT accepted" || tr.label != "Target: (10,20)" {
		t.Errorf("title=%q label=%q", tr.title, tr.label)
	}
}

func TestTray_ToggleCallback(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("tray should be enabled after two toggles")
	}
}

func TestTray_OpenCallback(t *testing.T) {
	tr := New()
	called := false
	tr.OnOpen(func() { called = true })
	tr.handleOpen()
	if !called {
		t.Error("open callback not called")
	}
}
