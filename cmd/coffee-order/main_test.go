package main

import (
	"bytes"
	"testing"
)

func TestBuildShowcaseOrder(t *testing.T) {
	order, err := buildShowcaseOrder()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if order.PriceMinor() != 55000 {
		t.Fatalf("expected 55000, got %d", order.PriceMinor())
	}
}

func TestPrintOrder(t *testing.T) {
	order, err := buildShowcaseOrder()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var buf bytes.Buffer
	if err := printOrder(&buf, order); err != nil {
		t.Fatalf("print failed: %v", err)
	}

	want := "latte size=large milk=oat syrups=[caramel] sugar=3 iced=true price=550.00\nprice: 550.00\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", buf.String(), want)
	}
}
