package config

import "testing"

func TestConfigResolver(t *testing.T) {
	flags := NewFlagSource()
	flags.Set("A", "from-flags")
	flags.Set("N", 7)
	flags.Set("B", false)

	t.Setenv("A", "from-env")
	t.Setenv("C", "from-env")
	t.Setenv("M", "3")
	t.Setenv("B", "true")

	r := NewConfigResolver(flags, &EnvSource{}, nil)

	if got := r.ResolveString("A", "def"); got != "from-flags" {
		t.Errorf("expected flags first, got %s", got)
	}
	if got := r.ResolveString("C", "def"); got != "from-env" {
		t.Errorf("expected env fallback, got %s", got)
	}
	if got := r.ResolveString("MISSING_KEY_FOR_TEST", "def"); got != "def" {
		t.Errorf("expected default, got %s", got)
	}
	if got := r.ResolveInt("N", 0); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := r.ResolveInt("M", 0); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := r.ResolveBool("B", true); got {
		t.Error("expected an explicit false flag to beat env true")
	}
}

func TestEnvSource_BadNumbers(t *testing.T) {
	t.Setenv("BAD_INT", "abc")
	t.Setenv("BAD_BOOL", "maybe")

	env := &EnvSource{}
	if _, ok := env.GetInt("BAD_INT"); ok {
		t.Error("expected unparsable int to be ignored")
	}
	if _, ok := env.GetBool("BAD_BOOL"); ok {
		t.Error("expected unparsable bool to be ignored")
	}
}
