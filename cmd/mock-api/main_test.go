package main

import (
	"testing"
)

func TestLoadFixtures(t *testing.T) {
	t.Run("built-in data when no path is given", func(t *testing.T) {
		fixtures, err := loadFixtures("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fixtures.Stocks) == 0 {
			t.Error("expected default stocks")
		}
	})

	t.Run("fixtures file", func(t *testing.T) {
		fixtures, err := loadFixtures("../../mockapi/testdata/fixtures.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := fixtures.StockBySymbol("NVDA"); !ok {
			t.Error("expected NVDA from the fixtures file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := loadFixtures("does-not-exist.yaml"); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

func TestRootCmdFlags(t *testing.T) {
	t.Setenv("MOCK_API_PORT", "9100")

	cmd := newRootCmd()

	port, err := cmd.Flags().GetString("port")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port != "9100" {
		t.Errorf("port = %s, want 9100", port)
	}
}
