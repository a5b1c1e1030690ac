// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"testing"
)

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}

	av := GetAvailableLocales()
	for _, k := range []string{"en", "tr"} {
		if _, ok := av[k]; !ok {
			t.Fatalf("expected available locale %q to be present", k)
		}
	}
	if av["tr"] != "Türkçe" {
		t.Fatalf("unexpected display name for tr: %q", av["tr"])
	}
}

func TestInitUnknownFallsBackToEnglish(t *testing.T) {
	Init("xx")
	if GetLang() != "en" {
		t.Fatalf("expected fallback to 'en', got %q", GetLang())
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")

	if got := T("all"); got != "All" {
		t.Fatalf("expected 'All', got %q", got)
	}

	got := T("scan.finished", 3, 254, 254)
	if got != "Scan finished: 3 boards found (254/254 probed)" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}

	SetLang("tr")
	if GetLang() != "tr" {
		t.Fatalf("expected lang 'tr', got %q", GetLang())
	}
	if got := T("action.lock"); got != "Kilitle" {
		t.Fatalf("expected Turkish 'Kilitle', got %q", got)
	}
	SetLang("en")
}

func TestT_UnknownIDReturnsID(t *testing.T) {
	Init("en")
	if got := T("no.such.message", 1); got != "no.such.message" {
		t.Fatalf("expected id back, got %q", got)
	}
}
