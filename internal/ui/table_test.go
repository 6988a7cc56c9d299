package ui

import "testing"

func TestColumnsAlignment(t *testing.T) {
	c := NewColumns("  ")
	c.Row("tasks", "12")
	c.Row("memories", "3")
	c.Row("ideas", "104")

	want := "  tasks     12\n  memories  3\n  ideas     104\n"
	if got := c.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestColumnsRaggedRows(t *testing.T) {
	c := NewColumns("")
	c.Row("one")
	c.Row("two", "cells", "here")

	want := "one\ntwo  cells  here\n"
	if got := c.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestColumnsEmpty(t *testing.T) {
	if got := NewColumns("  ").String(); got != "" {
		t.Errorf("empty columns rendered %q", got)
	}
}

func TestSpinnerOffTerminal(t *testing.T) {
	// Test stdout is not a TTY, so Start prints once and Stop is a no-op.
	sp := NewSpinner("working")
	sp.Start()
	sp.Stop()
	sp.Stop()
}
