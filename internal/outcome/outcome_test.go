package outcome_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bistroboard/internal/outcome"
)

func TestResultExclusivity(t *testing.T) {
	ok := outcome.OK(42)
	if !ok.Success() || ok.Err() != nil || ok.Value() != 42 {
		t.Fatalf("success result: ok=%v err=%v value=%v", ok.Success(), ok.Err(), ok.Value())
	}
	fail := outcome.Fail[int](&outcome.NotFoundError{Entity: "ticket", ID: "t-1"})
	if fail.Success() || fail.Err() == nil {
		t.Fatalf("failed result: ok=%v err=%v", fail.Success(), fail.Err())
	}
	if fail.Value() != 0 {
		t.Fatalf("failed result value must be zero, got %v", fail.Value())
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&outcome.ValidationError{Field: "title", Message: "required"}, outcome.KindValidation},
		{&outcome.BusinessRuleError{Code: "IMAGE_CANNOT_APPROVE", Message: "nope"}, outcome.KindBusinessRule},
		{&outcome.NotFoundError{Entity: "report", ID: "r-1"}, outcome.KindNotFound},
		{&outcome.UnauthorizedError{Action: "export"}, outcome.KindUnauthorized},
		{errors.New("boom"), outcome.KindUnknown},
		{fmt.Errorf("wrapped: %w", &outcome.ValidationError{Message: "bad"}), outcome.KindValidation},
	}
	for _, tc := range cases {
		if got := outcome.KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestEnvelopeJSON(t *testing.T) {
	data, err := json.Marshal(outcome.OK(map[string]string{"id": "a-1"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"success":true`) || !strings.Contains(string(data), `"a-1"`) {
		t.Fatalf("success envelope: %s", data)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Fatalf("success envelope carries error branch: %s", data)
	}

	data, err = json.Marshal(outcome.Fail[map[string]string](&outcome.BusinessRuleError{
		Code:    "REPORT_CANNOT_SEND",
		Message: "report is sending",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"success":false`) || !strings.Contains(string(data), "REPORT_CANNOT_SEND") {
		t.Fatalf("failure envelope: %s", data)
	}
	if strings.Contains(string(data), `"data"`) {
		t.Fatalf("failure envelope carries data branch: %s", data)
	}
}

func TestZeroResultMarshals(t *testing.T) {
	var zero outcome.Result[int]
	data, err := json.Marshal(zero)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"success":false`) || !strings.Contains(string(data), "unspecified failure") {
		t.Fatalf("zero-value envelope: %s", data)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	e := &outcome.ValidationError{Field: "startDate", Message: "must not be after endDate"}
	if e.Error() != "startDate: must not be after endDate" {
		t.Fatalf("unexpected message %q", e.Error())
	}
}
