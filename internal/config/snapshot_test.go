package config

import (
	"testing"

	"github.com/uetop/codify-document/internal/site"
)

func baseCfg() *Config {
	return &Config{Version: CurrentVersion, Site: site.Default()}
}

func finalize(t *testing.T, c *Config) string {
	t.Helper()
	if _, err := NormalizeConfig(c); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := ApplyDefaults(c); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return c.Snapshot()
}

func TestSnapshotStableAcrossNormalizationVariants(t *testing.T) {
	a := baseCfg()
	a.Site.Lang = "EN-us"
	a.Site.Base = "codify-api"
	a.Output.Format = "TS"

	b := baseCfg()

	if snapA, snapB := finalize(t, a), finalize(t, b); snapA != snapB {
		t.Fatalf("expected snapshots equal, got\nA=%s\nB=%s", snapA, snapB)
	}
}

func TestSnapshotIgnoresRuntimeSettings(t *testing.T) {
	a := baseCfg()
	b := baseCfg()
	b.Monitoring.Logging.Level = LogLevelDebug
	b.History.Path = "runs.db"
	b.Events.NATSURL = "nats://localhost:4222"

	if finalize(t, a) != finalize(t, b) {
		t.Fatal("runtime-only settings must not change the snapshot")
	}
}

func TestSnapshotDetectsSidebarReorder(t *testing.T) {
	c := baseCfg()
	snap1 := finalize(t, c)

	items := c.Site.ThemeConfig.Sidebar[2].Items
	items[0], items[1] = items[1], items[0]
	if snap1 == c.Snapshot() {
		t.Fatal("expected snapshot change after reordering sidebar items")
	}
}
