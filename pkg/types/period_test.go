package types

import (
	"testing"
	"time"
)

func TestPeriodRoundTrip(t *testing.T) {
	p := Period{Year: 2025, Month: time.June}
	if p.String() != "2025-06" {
		t.Fatalf("unexpected key %q", p.String())
	}
	parsed, err := ParsePeriod("2025-06")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != p {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, p)
	}
}

func TestParsePeriodRejectsGarbage(t *testing.T) {
	if _, err := ParsePeriod("June-2025"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ParsePeriod("2025-13"); err == nil {
		t.Fatal("expected parse error for month 13")
	}
}

func TestPeriodNextCrossesYear(t *testing.T) {
	p := Period{Year: 2025, Month: time.December}
	next := p.Next()
	if next.Year != 2026 || next.Month != time.January {
		t.Fatalf("unexpected next period %v", next)
	}
}

func TestPeriodBefore(t *testing.T) {
	early := Period{Year: 2025, Month: time.May}
	late := Period{Year: 2025, Month: time.June}
	if !early.Before(late) || late.Before(early) {
		t.Fatal("ordering broken within a year")
	}
	if !late.Before(Period{Year: 2026, Month: time.January}) {
		t.Fatal("ordering broken across years")
	}
}

func TestPeriodScan(t *testing.T) {
	var p Period
	if err := p.Scan("2024-02"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if p.Year != 2024 || p.Month != time.February {
		t.Fatalf("unexpected scanned period %v", p)
	}
	if err := p.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if !p.IsZero() {
		t.Fatal("expected zero period after nil scan")
	}
}
