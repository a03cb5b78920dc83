package models

import "testing"

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  Alice_99 "); got != "alice_99" {
		t.Fatalf("NormalizeUsername = %q, want %q", got, "alice_99")
	}
}

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		username string
		wantErr  bool
	}{
		{"alice", false},
		{"alice_99", false},
		{"ab", true},
		{"this_username_is_far_too_long", true},
		{"Alice", true},
		{"alice!", true},
		{"", true},
	}

	for _, tc := range cases {
		err := ValidateUsername(tc.username)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tc.username, err, tc.wantErr)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("alice@example.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	for _, email := range []string{"", "not-an-email", "missing@"} {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("password123"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Fatalf("expected error for a short password")
	}
}

func TestSanitizedStripsSecrets(t *testing.T) {
	user := User{
		ID:           "u1",
		Username:     "alice",
		Password:     "bcrypt-hash",
		RefreshToken: "refresh-jwt",
	}

	clean := user.Sanitized()
	if clean.Password != "" || clean.RefreshToken != "" {
		t.Fatalf("Sanitized left secrets: %+v", clean)
	}
	if clean.ID != user.ID || clean.Username != user.Username {
		t.Fatalf("Sanitized dropped identity fields: %+v", clean)
	}
}
