package observability

import "testing"

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", " collector:4318 ")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, team = core ,broken")
	t.Setenv("OTEL_SAMPLER_RATIO", "2.5")

	set := settingsFromEnv()
	if !set.enabled {
		t.Fatal("enabled: want=true")
	}
	if set.endpoint != "collector:4318" {
		t.Fatalf("endpoint: want=%q got=%q", "collector:4318", set.endpoint)
	}
	if !set.insecure {
		t.Fatal("insecure: want=true")
	}
	if set.ratio != 1 {
		t.Fatalf("ratio clamps to 1, got=%v", set.ratio)
	}
	if len(set.headers) != 2 || set.headers["x-api-key"] != "abc" || set.headers["team"] != "core" {
		t.Fatalf("headers: got=%v", set.headers)
	}
}

func TestSettingsDefaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
	t.Setenv("OTEL_SAMPLER_RATIO", "")

	set := settingsFromEnv()
	if set.enabled {
		t.Fatal("enabled: want=false")
	}
	if set.ratio != 0.1 {
		t.Fatalf("ratio default: want=0.1 got=%v", set.ratio)
	}
	if set.headers != nil {
		t.Fatalf("headers: want=nil got=%v", set.headers)
	}
}
