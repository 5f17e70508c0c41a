package fileutil

import (
	"os"
	"strings"
	"testing"
)

func TestHasShebang(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   []byte
		want bool
	}{
		{in: []byte("#!/usr/bin/env bash\necho hi\n"), want: true},
		{in: []byte("#!/bin/bash\n"), want: true},
		{in: []byte("#!/bin/sh\n"), want: true},
		{in: []byte("#!/usr/bin/env sh\n"), want: true},
		{in: []byte("#!foo bar\n"), want: false},
		{in: []byte("#!/bin/zsh\n"), want: false},
		{in: []byte("#! /bin/sh\n"), want: true},
		{in: []byte("no shebang here\n"), want: false},
	}

	for _, test := range tests {
		name := strings.ReplaceAll(string(test.in), "\n", "\\n")
		t.Run(name, func(t *testing.T) {
			if got := HasShebang(test.in); got != test.want {
				t.Fatalf("HasShebang(%q) = %v, want %v", test.in, got, test.want)
			}
		})
	}
}

func TestCouldBeScript(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	scriptPath := dir + "/deploy.sh"
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	binPath := dir + "/deploy.bin"
	if err := os.WriteFile(binPath, []byte("\x7fELF"), 0o755); err != nil {
		t.Fatal(err)
	}
	noExtPath := dir + "/deploy"
	if err := os.WriteFile(noExtPath, []byte("#!/bin/sh\necho hi\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(scriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := CouldBeScript(info); got != ConfIsScript {
		t.Fatalf("CouldBeScript(%q) = %v, want ConfIsScript", scriptPath, got)
	}

	info, err = os.Stat(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := CouldBeScript(info); got != ConfNotScript {
		t.Fatalf("CouldBeScript(%q) = %v, want ConfNotScript", binPath, got)
	}

	info, err = os.Stat(noExtPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := CouldBeScript(info); got != ConfIfShebang {
		t.Fatalf("CouldBeScript(%q) = %v, want ConfIfShebang", noExtPath, got)
	}
}
