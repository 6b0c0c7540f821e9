package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequestIdentifierKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"username", `{"username":"ops1","password":"p"}`, "ops1"},
		{"email", `{"email":"ops1@example.com","password":"p"}`, "ops1@example.com"},
		{"emailOrUsername", `{"emailOrUsername":"ops1","password":"p"}`, "ops1"},
		{"identifier", `{"identifier":"ops1","password":"p"}`, "ops1"},
		{"identifier wins over username", `{"identifier":"a","username":"b","password":"p"}`, "a"},
		{"emailOrUsername wins over username", `{"emailOrUsername":"a","username":"b","password":"p"}`, "a"},
		{"blank keys are skipped", `{"identifier":"  ","username":"b","password":"p"}`, "b"},
		{"none", `{"password":"p"}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req LoginRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.want, req.Identifier)
			assert.Equal(t, "p", req.Password)
		})
	}
}

func TestLoginRequestValidateAfterNormalize(t *testing.T) {
	var req LoginRequest
	require.NoError(t, json.Unmarshal([]byte(`{"email":"  Ops1@Example.COM ","password":"p"}`), &req))
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "ops1@example.com", req.Identifier)

	var empty LoginRequest
	require.NoError(t, json.Unmarshal([]byte(`{"password":"p"}`), &empty))
	require.Error(t, empty.Validate())
}
