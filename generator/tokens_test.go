package generator

import "testing"

func TestTokenCounter(t *testing.T) {
	c := NewTokenCounter()
	for _, model := range []string{"gpt-4o", "llama3.2", ""} {
		if n := c.Count(model, "The importance of mental health"); n <= 0 {
			t.Errorf("Count(%q) = %d, want > 0", model, n)
		}
	}
	if c.Count("gpt-4o", "") != 0 {
		t.Errorf("empty text should count as zero tokens")
	}
}
