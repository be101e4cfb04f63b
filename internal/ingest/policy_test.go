package ingest

import "testing"

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicySkip},
		{in: "skip", want: PolicySkip},
		{in: "abort", want: PolicyAbort},
		{in: "Abort", wantErr: true},
		{in: "halt", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePolicy(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePolicy(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolvePoliciesDefaults(t *testing.T) {
	policies, err := ResolvePolicies("", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(policies) != 5 {
		t.Fatalf("expected policies for 5 tables, got %d", len(policies))
	}
	for name, p := range policies {
		if p != PolicySkip {
			t.Errorf("table %s: default policy = %q, want skip", name, p)
		}
	}
}

func TestResolvePoliciesOverride(t *testing.T) {
	policies, err := ResolvePolicies("skip", map[string]string{"relationships": "abort"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if policies["relationships"] != PolicyAbort {
		t.Errorf("relationships policy = %q, want abort", policies["relationships"])
	}
	if policies["entities"] != PolicySkip {
		t.Errorf("entities policy = %q, want skip", policies["entities"])
	}
}

func TestResolvePoliciesRejectsUnknownTable(t *testing.T) {
	if _, err := ResolvePolicies("skip", map[string]string{"nodes": "abort"}); err == nil {
		t.Fatal("expected error for unknown table override")
	}
}

func TestResolvePoliciesRejectsBadValues(t *testing.T) {
	if _, err := ResolvePolicies("continue", nil); err == nil {
		t.Fatal("expected error for unknown default policy")
	}
	if _, err := ResolvePolicies("", map[string]string{"entities": "retry"}); err == nil {
		t.Fatal("expected error for unknown override policy")
	}
}
