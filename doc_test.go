package furnilytics

import "testing"

// TestDefaultConfigCoherence guards the package-level defaults against
// accidental edits that would make them internally inconsistent.
func TestDefaultConfigCoherence(t *testing.T) {
	if DefaultMaxBackoff < DefaultInitialBackoff {
		t.Errorf("DefaultMaxBackoff (%v) below DefaultInitialBackoff (%v)", DefaultMaxBackoff, DefaultInitialBackoff)
	}

	if DefaultJitter < 0 || DefaultJitter > 1 {
		t.Errorf("DefaultJitter %v outside [0, 1]", DefaultJitter)
	}

	if DefaultMaxRetries < 0 {
		t.Errorf("DefaultMaxRetries %d is negative", DefaultMaxRetries)
	}
}
