// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-lint checks the operator messages for consistency. It collects every
// key passed to i18n.T() in the Go sources and compares the set against the
// locale files: keys used but missing from a locale fail the run, keys no
// code uses are reported as orphans.
//
// Usage, from the repository root:
//
//	go run ./tools/i18n-lint
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

var keyCall = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

// report is the outcome of comparing used keys with one locale.
type report struct {
	Locale  string
	Missing []string
	Orphans []string
}

func main() {
	used, err := findUsedKeys(projectRoot)
	if err != nil {
		fmt.Printf("error scanning sources: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d translation keys used in source code\n", len(used))

	files, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil || len(files) == 0 {
		fmt.Printf("no locale files found in %s\n", localesDir)
		os.Exit(1)
	}

	failed := false
	for _, file := range files {
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			fmt.Printf("%s: %v\n", file, err)
			failed = true
			continue
		}
		r := compare(filepath.Base(file), used, keys)
		for _, k := range r.Missing {
			fmt.Printf("%s: missing %s\n", r.Locale, k)
		}
		// Orphans only matter once, in the locale that defines the key set.
		if r.Locale == primaryLocale {
			for _, k := range r.Orphans {
				fmt.Printf("%s: orphaned %s\n", r.Locale, k)
			}
		}
		if len(r.Missing) > 0 {
			failed = true
		}
	}

	if failed {
		fmt.Println("translation files are inconsistent")
		os.Exit(1)
	}
	fmt.Println("all translation files are consistent")
}

// findUsedKeys returns every literal key passed to i18n.T in non-test Go
// files below root. The tools directory is skipped.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range keyCall.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale reads a locale file and returns its keys. Nested maps
// are flattened with dots.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flatten("", data, keys)
	return keys, nil
}

func flatten(prefix string, node any, keys map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		flatten(k, v, keys)
	}
}

func compare(locale string, used, defined map[string]struct{}) report {
	r := report{Locale: locale}
	for k := range used {
		if _, ok := defined[k]; !ok {
			r.Missing = append(r.Missing, k)
		}
	}
	for k := range defined {
		if _, ok := used[k]; !ok {
			r.Orphans = append(r.Orphans, k)
		}
	}
	slices.Sort(r.Missing)
	slices.Sort(r.Orphans)
	return r
}
