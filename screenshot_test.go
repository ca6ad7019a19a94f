package aspen

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-click", "after-click"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	s := NewScene()
	s.Screenshot("a")
	s.Screenshot("b")
	s.Screenshot("c")
	if len(s.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(s.screenshotQueue))
	}
	if s.screenshotQueue[0] != "a" || s.screenshotQueue[1] != "b" || s.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", s.screenshotQueue)
	}
}

func TestScreenshotDir(t *testing.T) {
	s := NewScene()
	if s.screenshotDir != "screenshots" {
		t.Errorf("screenshotDir = %q, want %q", s.screenshotDir, "screenshots")
	}
	s.SetScreenshotDir("out")
	if s.screenshotDir != "out" {
		t.Errorf("screenshotDir = %q, want %q", s.screenshotDir, "out")
	}
	s.SetScreenshotDir("")
	if s.screenshotDir != "screenshots" {
		t.Errorf("empty dir should restore the default, got %q", s.screenshotDir)
	}
}

func TestHeadlessDrawKeepsScreenshotQueue(t *testing.T) {
	s := NewScene()
	s.Screenshot("later")
	s.Draw(nil)
	if len(s.screenshotQueue) != 1 {
		t.Errorf("queue len = %d, want 1", len(s.screenshotQueue))
	}
}

func TestRunnerStep_Screenshot(t *testing.T) {
	s := NewScene()
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "screenshot", "label": "initial"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)
	s.Update()
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "initial" {
		t.Errorf("queue = %v, want [initial]", s.screenshotQueue)
	}
}
