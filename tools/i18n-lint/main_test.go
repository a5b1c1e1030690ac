// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindUsedKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), `package a
func f() { _ = i18n.T("scan.started", r); _ = i18n.T("action.lock") }`)
	writeFile(t, filepath.Join(root, "a_test.go"), `package a
func g() { _ = i18n.T("only.in.tests") }`)
	writeFile(t, filepath.Join(root, "tools", "x.go"), `package x
func h() { _ = i18n.T("tool.key") }`)

	keys, err := findUsedKeys(root)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for k := range keys {
		got = append(got, k)
	}
	slices.Sort(got)
	if !slices.Equal(got, []string{"action.lock", "scan.started"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestLoadKeysFlattensNestedMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.yaml")
	writeFile(t, path, "\"app.title\": Boardlock\ntui:\n  status:\n    idle: Ready\n")
	keys, err := loadKeysFromLocale(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"app.title", "tui.status.idle"} {
		if _, ok := keys[k]; !ok {
			t.Errorf("missing %s in %v", k, keys)
		}
	}
}

func TestCompare(t *testing.T) {
	used := map[string]struct{}{"a.b": {}, "c.d": {}}
	defined := map[string]struct{}{"a.b": {}, "e.f": {}}
	r := compare("tr.yaml", used, defined)
	if !slices.Equal(r.Missing, []string{"c.d"}) || !slices.Equal(r.Orphans, []string{"e.f"}) {
		t.Fatalf("unexpected report %+v", r)
	}
}

// The shipped locales must cover every key the code uses.
func TestShippedLocalesAreComplete(t *testing.T) {
	root := filepath.Join("..", "..")
	used, err := findUsedKeys(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"en.yaml", "tr.yaml"} {
		keys, err := loadKeysFromLocale(filepath.Join(root, localesDir, name))
		if err != nil {
			t.Fatal(err)
		}
		if r := compare(name, used, keys); len(r.Missing) > 0 {
			t.Errorf("%s is missing %v", name, r.Missing)
		}
	}
}
