package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/android-cli/internal/core"
)

const sampleDump = `UI hierchary dumped to: /dev/tty
<?xml version='1.0' encoding='UTF-8' standalone='yes' ?><hierarchy rotation="0"><node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="org.telegram.messenger" content-desc="" clickable="false" enabled="true" focused="false" bounds="[0,0][1080,2400]"><node index="0" text="Chats" resource-id="org.telegram.messenger:id/title" class="android.widget.TextView" content-desc="" clickable="false" enabled="true" focused="false" bounds="[40,100][400,180]" /><node index="1" text="" resource-id="org.telegram.messenger:id/menu" class="android.widget.ImageButton" content-desc="Open navigation menu" clickable="true" enabled="true" focused="false" bounds="[960,100][1080,220]" /><node index="2" text="Send" resource-id="org.telegram.messenger:id/send" class="android.widget.Button" content-desc="" clickable="true" enabled="false" focused="true" bounds="[900,2200][1080,2400]" /></node></hierarchy>`

func TestParseHierarchy_SkipsStatusLine(t *testing.T) {
	tree, err := ParseHierarchy(sampleDump)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Root == nil {
		t.Fatal("expected root node")
	}
	if tree.Root.Class != "" {
		t.Errorf("hierarchy root should have no class, got %q", tree.Root.Class)
	}
	if tree.Count() != 5 {
		t.Errorf("expected 5 nodes, got %d", tree.Count())
	}

	frame := tree.Root.Children[0]
	if frame.Class != "android.widget.FrameLayout" {
		t.Errorf("class: got %q", frame.Class)
	}
	if len(frame.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(frame.Children))
	}
	if frame.Children[0].Text != "Chats" || frame.Children[2].Text != "Send" {
		t.Errorf("children out of document order: %q, %q", frame.Children[0].Text, frame.Children[2].Text)
	}

	send := frame.Children[2]
	if !send.Clickable || send.Enabled || !send.Focused {
		t.Errorf("send states: clickable=%v enabled=%v focused=%v", send.Clickable, send.Enabled, send.Focused)
	}
	if send.Bounds == nil || *send.Bounds != (Bounds{900, 2200, 1080, 2400}) {
		t.Errorf("send bounds: got %v", send.Bounds)
	}
	if send.RawBounds != "[900,2200][1080,2400]" {
		t.Errorf("raw bounds: got %q", send.RawBounds)
	}
}

func TestParseHierarchy_TrailingOutputIgnored(t *testing.T) {
	raw := `<hierarchy><node class="a.B" bounds="[0,0][1,1]"/></hierarchy>
UI hierchary dumped to: /dev/tty`
	tree, err := ParseHierarchy(raw)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Count() != 2 {
		t.Errorf("expected 2 nodes, got %d", tree.Count())
	}
}

func TestParseHierarchy_TagAsClass(t *testing.T) {
	raw := `<?xml version="1.0"?><hierarchy><android.widget.LinearLayout><android.widget.EditText text="hi" /></android.widget.LinearLayout></hierarchy>`
	tree, err := ParseHierarchy(raw)
	if err != nil {
		t.Fatal(err)
	}
	edit := tree.Root.Children[0].Children[0]
	if edit.Class != "android.widget.EditText" {
		t.Errorf("class from tag: got %q", edit.Class)
	}
	if !edit.Enabled {
		t.Error("enabled should default to true when the attribute is absent")
	}
}

func TestParseHierarchy_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no marker", "ERROR: could not get idle state."},
		{"empty", ""},
		{"truncated", `<hierarchy><node class="a">`},
		{"malformed xml", `<hierarchy><node class="a"></hierarchy>`},
		{"bad bounds", `<hierarchy><node bounds="[0,0]" /></hierarchy>`},
		{"bad bounds on an untargeted leaf", `<hierarchy><node class="a.Frame" bounds="[0,0][10,10]"><node class="a.Text" text="ok" bounds="[0,0][10,10]" /><node class="a.Icon" bounds="[5,5][1,1]" /></node></hierarchy>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHierarchy(tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, core.ErrParse) {
				t.Errorf("expected parse error kind, got %v", err)
			}
		})
	}
}

func TestParseHierarchy_DeepNesting(t *testing.T) {
	const depth = 5000
	var b strings.Builder
	b.WriteString("<hierarchy>")
	for i := 0; i < depth; i++ {
		b.WriteString(`<node class="x.Y">`)
	}
	for i := 0; i < depth; i++ {
		b.WriteString("</node>")
	}
	b.WriteString("</hierarchy>")

	tree, err := ParseHierarchy(b.String())
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Count(); got != depth+1 {
		t.Errorf("expected %d nodes, got %d", depth+1, got)
	}
}
