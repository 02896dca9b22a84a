package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emotion/input"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestProbe(t *testing.T) {
	out, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	kbd := &probeKeyboard{}
	p := input.New(kbd, input.Options{Log: logger})

	if !probe(out, logger, kbd, p, 'A') {
		t.Fatal("probe('A') = false")
	}
	if got := string(p.PressedChars()); got != "A" {
		t.Fatalf("chars = %q", got)
	}
	if keys := p.PressedKeys(); len(keys) != 2 || keys[0] != input.KeyLeftShift || keys[1] != input.KeyA {
		t.Fatalf("keys = %v", keys)
	}
	if !strings.Contains(hook.LastEntry().Message, `chars="A"`) {
		t.Fatalf("log = %q", hook.LastEntry().Message)
	}
	if probe(out, logger, kbd, p, 'é') {
		t.Fatal("probe('é') = true")
	}

	raw, _ := os.ReadFile(out.Name())
	if !strings.Contains(string(raw), "scan 0x04 down -> key 65") {
		t.Fatalf("output:\n%s", raw)
	}
}
