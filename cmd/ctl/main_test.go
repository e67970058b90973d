package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/simplycomply/compliance-api/internal/config"
)

func runCtl(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg, &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCatalogValidate(t *testing.T) {
	out, err := runCtl(t, config.Config{}, "catalog", "validate")
	if err != nil {
		t.Fatalf("catalog validate error = %v", err)
	}
	if strings.TrimSpace(out) != "catalog ok" {
		t.Fatalf("output = %q", out)
	}
}

func TestCatalogList(t *testing.T) {
	out, err := runCtl(t, config.Config{}, "catalog", "list")
	if err != nil {
		t.Fatalf("catalog list error = %v", err)
	}
	if !strings.Contains(out, "dental") || !strings.Contains(out, "CQC") {
		t.Fatalf("sector listing missing dental: %s", out)
	}

	out, err = runCtl(t, config.Config{}, "catalog", "list", "--sector", "dental")
	if err != nil {
		t.Fatalf("catalog list --sector error = %v", err)
	}
	if !strings.Contains(out, "REQUIREMENT") || !strings.Contains(out, "KEY") {
		t.Fatalf("sector detail missing sections: %s", out)
	}
}

func TestRecomputeRequiresBusinessID(t *testing.T) {
	if _, err := runCtl(t, config.Config{}, "recompute"); err == nil {
		t.Fatalf("recompute without args error = nil")
	}
}

func TestEventsWatchRequiresNATS(t *testing.T) {
	_, err := runCtl(t, config.Config{}, "events", "watch")
	var ee *exitErr
	if !errors.As(err, &ee) || ee.code != 3 {
		t.Fatalf("events watch error = %v, want exit code 3", err)
	}
}
