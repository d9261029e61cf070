package schema

import (
	"errors"
	"testing"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"post", true},
		{"blog_post", true},
		{"BlogPost", true},
		{"_", true},
		{"", false},
		{"post1", false},
		{"post-s", false},
		{"posts; DROP TABLE users", false},
		{"post s", false},
		{"pöst", false},
		{"post`", false},
		{`post"`, false},
		{"post.x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidName(tt.name); got != tt.want {
				t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
			}
			err := ValidateIdentifier(tt.name)
			if tt.want && err != nil {
				t.Errorf("ValidateIdentifier(%q) = %v, want nil", tt.name, err)
			}
			if !tt.want && !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("ValidateIdentifier(%q) = %v, want ErrInvalidIdentifier", tt.name, err)
			}
		})
	}
}
