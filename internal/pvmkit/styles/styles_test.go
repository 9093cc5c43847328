package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
)

func TestRenderers(t *testing.T) {
	renderers := map[string]func(int) (*glamour.TermRenderer, error){
		"markdown": GetMarkdownRenderer,
		"vscode":   GetVSCodeDarkRenderer,
	}
	for name, newRenderer := range renderers {
		t.Run(name, func(t *testing.T) {
			r, err := newRenderer(80)
			if err != nil {
				t.Fatal(err)
			}
			out, err := r.Render("# Opcodes\n\n```pvm\n0000  trap\n```\n")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "Opcodes") || !strings.Contains(out, "trap") {
				t.Errorf("rendered output lost content: %q", out)
			}
		})
	}
}
