package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bgf/dashboard-api/internal/core/domain"
	mongodb "github.com/bgf/dashboard-api/internal/infrastructure/db/mongo"
)

type codeUpserter interface {
	Upsert(ctx context.Context, code domain.StaffAccessCode) error
}

func newSeedAccessCodesCmd(connect connector) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-access-codes",
		Short: "Upsert staff access codes into the store",
		Long:  "Upserts the built-in access codes, or the codes listed in --file, into staff_access_codes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codes, err := loadCodes(file)
			if err != nil {
				return err
			}
			db, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return seedCodes(cmd.Context(), mongodb.NewAccessCodeRepository(db), codes, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML list of {code, name, role}; defaults to the built-in codes")
	return cmd
}

// loadCodes reads path, or returns the built-in codes when path is empty.
func loadCodes(path string) ([]domain.StaffAccessCode, error) {
	if path == "" {
		out := make([]domain.StaffAccessCode, 0, len(domain.DefaultAccessCodes))
		for _, c := range domain.DefaultAccessCodes {
			out = append(out, c)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseCodes(data)
}

func parseCodes(data []byte) ([]domain.StaffAccessCode, error) {
	var rows []domain.StaffAccessCode
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse access codes: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse access codes: file lists no codes")
	}

	seen := make(map[string]bool, len(rows))
	for i := range rows {
		rows[i].Code = domain.NormalizeAccessCode(rows[i].Code)
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		r := rows[i]
		switch {
		case r.Code == "":
			return nil, fmt.Errorf("access code %d: code is empty", i+1)
		case !r.Role.IsStaff():
			return nil, fmt.Errorf("access code %s: %q is not a staff role", r.Code, r.Role)
		case seen[r.Code]:
			return nil, fmt.Errorf("access code %s: listed twice", r.Code)
		}
		seen[r.Code] = true
	}
	return rows, nil
}

func seedCodes(ctx context.Context, store codeUpserter, codes []domain.StaffAccessCode, out io.Writer) error {
	for _, c := range codes {
		if err := store.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert %s: %w", c.Code, err)
		}
		fmt.Fprintf(out, "upserted %-10s %-18s %s\n", c.Code, c.Role, c.Name)
	}
	fmt.Fprintf(out, "%d access codes seeded\n", len(codes))
	return nil
}
