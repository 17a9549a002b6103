package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

type stubUpserter struct {
	got []domain.StaffAccessCode
	err error
}

func (s *stubUpserter) Upsert(_ context.Context, c domain.StaffAccessCode) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, c)
	return nil
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCodes_DefaultsSorted(t *testing.T) {
	codes, err := loadCodes("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes) != len(domain.DefaultAccessCodes) {
		t.Fatalf("expected %d codes, got %d", len(domain.DefaultAccessCodes), len(codes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1].Code >= codes[i].Code {
			t.Fatalf("codes not sorted: %s before %s", codes[i-1].Code, codes[i].Code)
		}
	}
}

func TestParseCodes(t *testing.T) {
	codes, err := parseCodes([]byte(`
- code: " po010 "
  name: Field Officer
  role: project_officer
- code: DIR002
  name: Deputy Director
  role: director
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes) != 2 || codes[0].Code != "PO010" || codes[1].Role != domain.RoleDirector {
		t.Errorf("unexpected codes %+v", codes)
	}
}

func TestParseCodes_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty list":       `[]`,
		"missing code":     "- name: X\n  role: ceo\n",
		"beneficiary role": "- code: B1\n  role: beneficiary\n",
		"unknown role":     "- code: B1\n  role: janitor\n",
		"duplicate":        "- code: ceo9\n  role: ceo\n- code: CEO9\n  role: ceo\n",
		"not yaml list":    "code: X",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseCodes([]byte(in)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSeedCodes(t *testing.T) {
	store := &stubUpserter{}
	codes := []domain.StaffAccessCode{
		{Code: "PO010", Name: "Field Officer", Role: domain.RoleProjectOfficer},
		{Code: "CEO002", Name: "Acting CEO", Role: domain.RoleCEO},
	}
	var out bytes.Buffer

	if err := seedCodes(context.Background(), store, codes, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.got) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(store.got))
	}
	if !strings.Contains(out.String(), "2 access codes seeded") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSeedCodes_StopsOnStoreError(t *testing.T) {
	store := &stubUpserter{err: errors.New("write concern")}

	err := seedCodes(context.Background(), store, []domain.StaffAccessCode{{Code: "PO010", Role: domain.RoleProjectOfficer}}, &bytes.Buffer{})

	if err == nil || !strings.Contains(err.Error(), "PO010") {
		t.Fatalf("expected error naming the code, got %v", err)
	}
}

func TestSeedCommand_BadFileSkipsConnect(t *testing.T) {
	path := writeFile(t, "codes.yaml", "- code: X\n  role: beneficiary\n")
	cmd := newSeedAccessCodesCmd(func(context.Context) (*mongo.Database, func(), error) {
		t.Fatal("connect must not be called for an invalid file")
		return nil, nil, nil
	})
	cmd.SetArgs([]string{"--file", path})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEnsureIndexesCommand_ConnectError(t *testing.T) {
	cmd := newEnsureIndexesCmd(func(context.Context) (*mongo.Database, func(), error) {
		return nil, nil, errors.New("no route to host")
	})
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "no route to host") {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestValidateGraphs_Embedded(t *testing.T) {
	out, err := run(t, "validate-graphs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, typ := range []string{"funding", "partnership", "scholarship", "general"} {
		if !strings.Contains(out, typ) {
			t.Errorf("expected %s in output %q", typ, out)
		}
	}
}

func TestValidateGraphs_RejectsBrokenFile(t *testing.T) {
	path := writeFile(t, "graphs.yaml", `
funding:
  initial: submitted
  stages:
    submitted:
      next: [nowhere]
`)
	if _, err := run(t, "validate-graphs", "--file", path); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, "routes", "BENEFICIARY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "beneficiary:") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "routes", "janitor"); err == nil {
		t.Fatal("expected unknown role error")
	}
}
