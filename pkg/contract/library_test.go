package contract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testLibrary(t *testing.T) *Library {
	t.Helper()

	lib, err := NewLibrary([]StandardClause{
		{
			ID:               "std-1",
			Title:            "Standard Limitation of Liability",
			Category:         "liability",
			ComplianceRating: 4.5,
			Regulations: []RegulationInfo{
				{Name: "Unfair Contract Terms Act 1977", Compliant: true},
				{Name: "Consumer Rights Act 2015", Compliant: false},
			},
		},
		{
			ID:               "std-2",
			Title:            "Comprehensive Confidentiality Clause",
			Category:         "confidentiality",
			ComplianceRating: 5.0,
			Regulations: []RegulationInfo{
				{Name: "Trade Secrets Directive (EU) 2016/943", Compliant: true},
			},
		},
		{
			ID:               "std-6",
			Title:            "Capped Liability",
			Category:         "Liability",
			ComplianceRating: 4.8,
			Regulations: []RegulationInfo{
				{Name: "Unfair Contract Terms Act 1977", Compliant: true},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	return lib
}

func TestNewLibrary_Validation(t *testing.T) {
	tests := []struct {
		name    string
		clauses []StandardClause
	}{
		{"missing id", []StandardClause{{Title: "x"}}},
		{"duplicate id", []StandardClause{{ID: "a"}, {ID: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLibrary(tt.clauses); err == nil {
				t.Error("NewLibrary() error = nil, want error")
			}
		})
	}
}

func TestLibrary_Get(t *testing.T) {
	lib := testLibrary(t)

	got, err := lib.Get("std-2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Comprehensive Confidentiality Clause" {
		t.Errorf("Title = %q", got.Title)
	}

	_, err = lib.Get("std-99")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != "std-99" {
		t.Errorf("Get(missing) error = %#v, want *NotFoundError for std-99", err)
	}
}

func TestLibrary_ListReturnsCopies(t *testing.T) {
	lib := testLibrary(t)

	list := lib.List()
	list[0].Regulations[0].Name = "changed"

	again, _ := lib.Get("std-1")
	if again.Regulations[0].Name != "Unfair Contract Terms Act 1977" {
		t.Errorf("library mutated through List(): %q", again.Regulations[0].Name)
	}
}

func TestLibrary_ByCategory(t *testing.T) {
	lib := testLibrary(t)

	got := lib.ByCategory("LIABILITY")
	if len(got) != 2 || got[0].ID != "std-1" || got[1].ID != "std-6" {
		t.Errorf("ByCategory() = %+v", got)
	}
}

func TestLibrary_Alternatives(t *testing.T) {
	lib := testLibrary(t)

	got := lib.Alternatives("unfair contract terms act 1977")
	if len(got) != 2 {
		t.Fatalf("Alternatives() returned %d clauses, want 2", len(got))
	}
	if got[0].ID != "std-6" || got[1].ID != "std-1" {
		t.Errorf("Alternatives() order = [%s %s], want [std-6 std-1]", got[0].ID, got[1].ID)
	}

	if got := lib.Alternatives("Consumer Rights Act 2015"); len(got) != 0 {
		t.Errorf("non-compliant regulation returned %+v", got)
	}
	if got := lib.Alternatives(""); got != nil {
		t.Errorf("empty regulation returned %+v", got)
	}
}

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yaml")
	data := `standard_clauses:
  - id: std-1
    title: Standard Limitation of Liability
    category: liability
    text: NEITHER PARTY SHALL BE LIABLE...
    tags: [liability, UK-compliant]
    compliance_rating: 4.5
    regulations:
      - name: Unfair Contract Terms Act 1977
        description: Complies with requirements for reasonableness in B2B contracts
        compliant: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write library: %v", err)
	}

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}
	if lib.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", lib.Len())
	}
	c, _ := lib.Get("std-1")
	if c.ComplianceRating != 4.5 || len(c.Regulations) != 1 || !c.Regulations[0].Compliant {
		t.Errorf("loaded clause = %+v", c)
	}
}

func TestLoadLibrary_UnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yaml")
	if err := os.WriteFile(path, []byte("standard_clauses:\n  - id: a\n    rating: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write library: %v", err)
	}

	if _, err := LoadLibrary(path); err == nil {
		t.Error("LoadLibrary() with unknown field error = nil, want error")
	}
}
