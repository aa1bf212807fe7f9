package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"research": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(out.String(), "inquest ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestResearchRequiresQuery(t *testing.T) {
	if err := researchCmd.Args(researchCmd, nil); err == nil {
		t.Error("research must require exactly one argument")
	}
	if err := researchCmd.Args(researchCmd, []string{"a", "b"}); err == nil {
		t.Error("research must reject extra arguments")
	}
	if err := researchCmd.Args(researchCmd, []string{"q"}); err != nil {
		t.Errorf("single argument rejected: %v", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "second", "third"); got != "second" {
		t.Errorf("firstNonEmpty = %q, want second", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q, want empty", got)
	}
}
