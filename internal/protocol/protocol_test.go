package protocol

import (
	"bytes"
	"testing"
)

func TestParseIDsValidateSigils(t *testing.T) {
	if id, err := ParsePaneID("%12"); err != nil || id != 12 {
		t.Errorf("ParsePaneID(%%12) = %v, %v", id, err)
	}
	if id, err := ParseWindowID("@3"); err != nil || id != 3 {
		t.Errorf("ParseWindowID(@3) = %v, %v", id, err)
	}
	if id, err := ParseSessionID("$0"); err != nil || id != 0 {
		t.Errorf("ParseSessionID($0) = %v, %v", id, err)
	}
	for _, bad := range []string{"12", "@12", "", "%", "%x", "$5"} {
		if _, err := ParsePaneID(bad); err == nil {
			t.Errorf("ParsePaneID(%q) should fail", bad)
		}
	}
	if PaneID(7).String() != "%7" || WindowID(7).String() != "@7" || SessionID(7).String() != "$7" {
		t.Error("sigil rendering wrong")
	}
}

func TestDecodeOutput(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    []byte
	}{
		{"plain", "hello", []byte("hello")},
		{"octal escape", `\100`, []byte("@")},
		{"escape run", `a\015\012b`, []byte("a\r\nb")},
		{"nul byte", `\000`, []byte{0}},
		{"trailing backslash", `ab\`, []byte("ab?")},
		{"short escape", `ab\01`, []byte("ab?")},
		{"short escape then text", `\0zx`, []byte("?zx")},
		{"non-octal after backslash", `\9ab`, []byte("?9ab")},
		{"cr inside escape", "\\0\r15x", []byte("\rx")},
		{"bare control dropped", "a\rb\x01c", []byte("abc")},
		{"tab preserved", "a\tb", []byte("a\tb")},
		{"empty", "", []byte{}},
	}
	for _, tc := range cases {
		if got := DecodeOutput(tc.payload); !bytes.Equal(got, tc.want) {
			t.Errorf("%s: DecodeOutput(%q) = %q, want %q", tc.name, tc.payload, got, tc.want)
		}
	}
}

func TestParseNotificationOutput(t *testing.T) {
	n, ok := ParseNotification(`%output %1 hi\012there`)
	if !ok {
		t.Fatal("parse failed")
	}
	out, ok := n.(Output)
	if !ok {
		t.Fatalf("got %T, want Output", n)
	}
	if out.Pane != 1 || !bytes.Equal(out.Data, []byte("hi\nthere")) {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestParseNotificationExtendedOutput(t *testing.T) {
	n, ok := ParseNotification(`%extended-output %4 0 hello`)
	if !ok {
		t.Fatal("parse failed")
	}
	out := n.(Output)
	if out.Pane != 4 || string(out.Data) != "hello" {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestParseNotificationLayoutChange(t *testing.T) {
	n, ok := ParseNotification("%layout-change @2 b25d,80x24,0,0,0 b25d,80x24,0,0,0 *Z")
	if !ok {
		t.Fatal("parse failed")
	}
	lc := n.(LayoutChange)
	if lc.Window != 2 || lc.Layout != "b25d,80x24,0,0,0" || lc.VisibleLayout != "b25d,80x24,0,0,0" {
		t.Errorf("unexpected layout change: %+v", lc)
	}
	if !lc.Zoomed {
		t.Error("Z flag should mark the window zoomed")
	}

	n, ok = ParseNotification("%layout-change @2 b25d,80x24,0,0,0")
	if !ok {
		t.Fatal("parse failed without optional fields")
	}
	lc = n.(LayoutChange)
	if lc.Zoomed || lc.VisibleLayout != "" {
		t.Errorf("optional fields should default empty: %+v", lc)
	}
}

func TestParseNotificationKinds(t *testing.T) {
	cases := []struct {
		line string
		want Notification
	}{
		{"%window-add @5", WindowAdd{Window: 5}},
		{"%window-close @5", WindowClose{Window: 5}},
		{"%unlinked-window-close @6", WindowClose{Window: 6}},
		{"%window-renamed @5 build logs", WindowRenamed{Window: 5, Name: "build logs"}},
		{"%window-pane-changed @1 %9", WindowPaneChanged{Window: 1, Pane: 9}},
		{"%session-changed $3 work", SessionChanged{Session: 3, Name: "work"}},
		{"%session-renamed play", SessionRenamed{Name: "play"}},
		{"%session-window-changed $3 @2", SessionWindowChanged{Session: 3, Window: 2}},
		{"%sessions-changed", SessionsChanged{}},
		{"%pause %2", PauseOutput{Pane: 2}},
		{"%continue %2", ContinueOutput{Pane: 2}},
		{"%client-session-changed /dev/ttys001 $1 main", ClientSessionChanged{Client: "/dev/ttys001", Session: 1, Name: "main"}},
		{"%client-detached /dev/ttys001", ClientDetached{Client: "/dev/ttys001"}},
		{"%exit server exited", Exit{Reason: "server exited"}},
		{"%exit", Exit{}},
	}
	for _, tc := range cases {
		got, ok := ParseNotification(tc.line)
		if !ok {
			t.Errorf("ParseNotification(%q) failed", tc.line)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseNotification(%q) = %#v, want %#v", tc.line, got, tc.want)
		}
	}
}

func TestParseNotificationDropsUnknownAndMalformed(t *testing.T) {
	for _, line := range []string{
		"%subscription-changed foo",
		"%output @1 data",
		"%layout-change %1 b25d,80x24,0,0,0",
		"%window-add",
		"not a notification",
		"",
	} {
		if n, ok := ParseNotification(line); ok {
			t.Errorf("ParseNotification(%q) = %#v, want drop", line, n)
		}
	}
}
