// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package validation

import (
	"strings"
	"testing"
)

type recommendationsRequest struct {
	UserID string `query:"user_id" validate:"required,userid"`
	Limit  int    `query:"limit" validate:"min=1,max=100"`
	Detail string `query:"detail" validate:"oneof=quick detailed"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	for _, req := range []recommendationsRequest{
		{UserID: "u1", Limit: 1, Detail: "quick"},
		{UserID: "firebase-uid-XYZ", Limit: 100, Detail: "detailed"},
	} {
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("ValidateStruct(%+v) = %v", req, err)
		}
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     recommendationsRequest
		field   string
		message string
	}{
		{"limit zero", recommendationsRequest{UserID: "u1", Limit: 0, Detail: "quick"}, "limit", "limit must be at least 1"},
		{"limit too large", recommendationsRequest{UserID: "u1", Limit: 101, Detail: "quick"}, "limit", "limit must be at most 100"},
		{"bad detail", recommendationsRequest{UserID: "u1", Limit: 5, Detail: "full"}, "detail", "detail must be one of: quick detailed"},
		{"missing user", recommendationsRequest{Limit: 5, Detail: "quick"}, "user_id", "user_id is required"},
		{"user with space", recommendationsRequest{UserID: "u 1", Limit: 5, Detail: "quick"}, "user_id", "user_id must be a valid user id"},
		{"user too long", recommendationsRequest{UserID: strings.Repeat("x", 129), Limit: 5, Detail: "quick"}, "user_id", "user_id must be a valid user id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("got %d errors: %v", len(err.Errors()), err)
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.field || fe.Error() != tt.message {
				t.Errorf("got %s %q, want %s %q", fe.Field(), fe.Error(), tt.field, tt.message)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&recommendationsRequest{UserID: "u1", Limit: 0, Detail: "quick"})
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_FAILED" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "limit" || apiErr.Details["tag"] != "min" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&recommendationsRequest{Limit: 500, Detail: "nope"})
	if err == nil || len(err.Errors()) != 3 {
		t.Fatalf("want 3 errors, got %v", err)
	}
	apiErr := err.ToAPIError()
	for _, field := range []string{"user_id:", "limit:", "detail:"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("message %q lacks %s", apiErr.Message, field)
		}
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(42); err == nil || err.Errors()[0].Field() != "unknown" {
		t.Errorf("ValidateStruct(42) = %v", err)
	}
}
