package validators

import (
	"testing"

	"taxiline/internal/models"
)

func TestValidateUserCreate(t *testing.T) {
	valid := func() *UserCreateRequest {
		return &UserCreateRequest{
			Name:     "Arash",
			Mobile:   "+15550002222",
			Password: "secret123",
		}
	}

	if errs := ValidateUserCreate(valid()); len(errs) != 0 {
		t.Fatalf("valid request rejected: %v", errs)
	}

	tests := []struct {
		name  string
		mut   func(*UserCreateRequest)
		field string
	}{
		{"missing name", func(r *UserCreateRequest) { r.Name = "" }, "name"},
		{"name too short", func(r *UserCreateRequest) { r.Name = "a" }, "name"},
		{"missing mobile", func(r *UserCreateRequest) { r.Mobile = "" }, "mobile"},
		{"mobile with letters", func(r *UserCreateRequest) { r.Mobile = "+1555abc2222" }, "mobile"},
		{"mobile too short", func(r *UserCreateRequest) { r.Mobile = "12345" }, "mobile"},
		{"short password", func(r *UserCreateRequest) { r.Password = "abc" }, "password"},
		{"invalid email", func(r *UserCreateRequest) { r.Email = "not-an-email" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mut(req)

			errs := ValidateUserCreate(req)
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if _, ok := errs.ToMap()[tt.field]; !ok {
				t.Errorf("expected %s reported, got %v", tt.field, errs.ToMap())
			}
		})
	}
}

func TestValidateUserCreateNormalizesEmail(t *testing.T) {
	req := &UserCreateRequest{
		Name:     "Arash",
		Mobile:   "+15550002222",
		Password: "secret123",
		Email:    "  Arash@Example.COM ",
	}

	if errs := ValidateUserCreate(req); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if req.Email != "arash@example.com" {
		t.Errorf("email = %q, want lowercased and trimmed", req.Email)
	}
}

func TestValidatePasswordChange(t *testing.T) {
	errs := ValidatePasswordChange(&PasswordChangeRequest{
		OldPassword: "oldpass",
		NewPassword: "newsecret",
	})
	if len(errs) != 0 {
		t.Fatalf("valid request rejected: %v", errs)
	}

	errs = ValidatePasswordChange(&PasswordChangeRequest{
		OldPassword: "samepass",
		NewPassword: "samepass",
	})
	if len(errs) == 0 {
		t.Fatal("same password must be rejected")
	}
	if _, ok := errs.ToMap()["newPassword"]; !ok {
		t.Errorf("expected newPassword reported, got %v", errs.ToMap())
	}

	errs = ValidatePasswordChange(&PasswordChangeRequest{
		OldPassword: "oldpass",
		NewPassword: "abc",
	})
	if len(errs) == 0 {
		t.Fatal("short password must be rejected")
	}
}

func TestValidateUser(t *testing.T) {
	user := &models.User{
		Name:   "Arash",
		Mobile: "+15550002222",
		Role:   models.RoleRider,
		Rate:   10,
	}
	if errs := ValidateUser(user); len(errs) != 0 {
		t.Fatalf("valid user rejected: %v", errs)
	}

	user.Rate = 11
	errs := ValidateUser(user)
	if len(errs) == 0 {
		t.Fatal("rate above 10 must be rejected")
	}
	if _, ok := errs.ToMap()["rate"]; !ok {
		t.Errorf("expected rate reported, got %v", errs.ToMap())
	}

	user.Rate = 10
	user.Role = "superuser"
	if errs := ValidateUser(user); len(errs) == 0 {
		t.Fatal("unknown role must be rejected")
	}
}
