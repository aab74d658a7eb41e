package main

import "testing"

func TestResolveDSN(t *testing.T) {
	t.Setenv(envDSN, "postgres://env@db/triage")

	got, err := resolveDSN("postgres://flag@db/triage")
	if err != nil || got != "postgres://flag@db/triage" {
		t.Errorf("flag: got %q, %v", got, err)
	}

	got, err = resolveDSN("")
	if err != nil || got != "postgres://env@db/triage" {
		t.Errorf("env: got %q, %v", got, err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries)%2 != 0 || len(entries) == 0 {
		t.Errorf("want paired up/down files, got %d entries", len(entries))
	}
}
