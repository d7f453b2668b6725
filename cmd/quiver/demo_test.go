package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestDemoCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"demo", "--shards", "2"})
	if err := root.Execute(); err != nil {
		t.Fatalf("demo: %v\n%s", err, out.String())
	}
	text := out.String()
	for _, want := range []string{"users over 25:", "helene followers: 2", "helene neighborhood:"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"stats", "--shards", "3"})
	if err := root.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out.String(), "shards: 3") {
		t.Errorf("output = %s", out.String())
	}
}
