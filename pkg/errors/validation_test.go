package errors

import (
	"strings"
	"testing"
)

func TestValidateProfileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "survival", false},
		{"valid with spaces", "My Fabric Pack", false},
		{"valid with dash", "fabric-1.20.1", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProfileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidProfile) {
				t.Errorf("ValidateProfileName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidProfile)
			}
		})
	}
}

func TestValidateVersionString(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1.20.1", false},
		{"24w14a", false},
		{"1.20.1-47.2.0", false},
		{"0.15.0+build.1", false},
		{"1.21.1-rc1", false},
		{"21.1.77-beta", false},

		{"", true},
		{"../1.20", true},
		{"1.20/../../etc", true},
		{"-1.20", true},
		{strings.Repeat("1", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateVersionString("minecraft", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersionString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"maven path", "net/fabricmc/fabric-loader/0.15.0/fabric-loader-0.15.0.jar", false},
		{"dots in names", "org/ow2/asm/asm/9.6/asm-9.6.jar", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "net/../../etc/passwd", true},
		{"backslash", "net\\fabricmc", true},
		{"null byte", "net/\x00", true},
		{"too long", strings.Repeat("a/", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelativePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelativePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://piston-meta.mojang.com/mc/game/version_manifest_v2.json", false},
		{"http://localhost:8080/servers", false},
		{"", true},
		{"ftp://example.com", true},
		{"file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
