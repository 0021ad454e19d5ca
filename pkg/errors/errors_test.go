package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		detailsOK bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodePersistence, status: http.StatusInternalServerError, publicMsg: "failed to persist changes", expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", expose: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.ExposeCause != tt.expose {
			t.Fatalf("code %s expected expose cause %v got %v", tt.code, tt.expose, meta.ExposeCause)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing loan id")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing loan id" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "peminjamanId"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodePersistence, cause, "process return")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "loan not found"))
	typed := As(err)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatal("IsCode should match")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatal("untyped errors default to internal")
	}
	if IsCode(nil, CodeInternal) {
		t.Fatal("nil error must not match any code")
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_returns_loan_id", TableName: "returns", Message: "duplicate key value"}
	dump := Dump(Wrap(CodePersistence, pgErr, "create return"))
	if dump.Code != CodePersistence {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "ux_returns_loan_id" {
		t.Fatalf("pg details missing: %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(dump.Chain))
	}
	if _, ok := dump.Fields()["pg_code"]; !ok {
		t.Fatal("fields should include pg_code")
	}

	pqDump := Dump(fmt.Errorf("wrap: %w", &pq.Error{Code: "23503", Table: "loans"}))
	if pqDump.PGCode != "23503" || pqDump.PGTable != "loans" {
		t.Fatalf("pq details missing: %+v", pqDump)
	}

	plain := Dump(stdErrors.New("boom")).Fields()
	if _, ok := plain["pg_code"]; ok {
		t.Fatal("plain errors should not carry pg fields")
	}
}
