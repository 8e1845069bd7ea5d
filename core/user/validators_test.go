package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	usr := User{
		FirstName: "John",
		LastName:  "Doe",
		RollNo:    "CS2024001",
		Email:     "johndoe@test.cd",
	}

	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "too short", pwd: "shorty!", wantErr: pwdMinLenText},
		{name: "contains whitespace", pwd: "pass word1", wantErr: pwdNoSpaceText},
		{name: "entirely numeric", pwd: "12345678", wantErr: pwdNotAllNumText},
		{name: "similar to email", pwd: "Johndoe@test.cd", wantErr: pwdAttrSimText},
		{name: "similar to full name", pwd: "john-doe1", wantErr: pwdAttrSimText},
		{name: "similar to roll number", pwd: "cs2024001x", wantErr: pwdAttrSimText},
		{name: "strong enough", pwd: "v3ry.Secure!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.pwd, usr)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				if assert.Error(t, err) {
					assert.EqualError(t, err, tt.wantErr)
				}
			}
		})
	}
}
