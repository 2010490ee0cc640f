package passcode

import "testing"

func TestNewGenerator_LengthBounds(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "too short", length: 3, wantErr: true},
		{name: "min", length: 4, wantErr: false},
		{name: "default", length: 6, wantErr: false},
		{name: "max", length: 8, wantErr: false},
		{name: "too long", length: 9, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.length)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGenerator(%d) error = %v, wantErr %v", tt.length, err, tt.wantErr)
			}
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	// Arrange
	gen, err := NewGenerator(6)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	seen := make(map[string]struct{})
	for range 50 {
		// Act
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}

		// Assert
		if len(code) != 6 {
			t.Fatalf("code %q: want 6 digits", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = struct{}{}
	}

	if len(seen) < 2 {
		t.Fatalf("expected varied codes, got %d distinct of 50", len(seen))
	}
}
