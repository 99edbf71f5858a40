package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/secunda/directory/internal/models"
	"github.com/stretchr/testify/require"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantDataset bool
		contains    string
	}{
		{name: "nil", err: nil},
		{name: "plain error passes through", err: errors.New("boom"), contains: "boom"},
		{
			name:        "unique violation",
			err:         &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "organization_phones_phone_number_key"},
			wantDataset: true,
			contains:    "organization_phones_phone_number_key",
		},
		{
			name:        "foreign key violation",
			err:         fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "organizations_buildings_id_fkey"}),
			wantDataset: true,
			contains:    "organizations_buildings_id_fkey",
		},
		{
			name:     "query canceled",
			err:      &pgconn.PgError{Code: pgerrcode.QueryCanceled, Message: "canceling statement due to statement timeout"},
			contains: "query canceled",
		},
		{
			name:     "missing table",
			err:      &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "buildings" does not exist`},
			contains: "schema not migrated",
		},
		{
			name:     "unknown code",
			err:      &pgconn.PgError{Code: "XX000", Message: "internal"},
			contains: "postgres error [XX000]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPostgresError(tt.err)
			if tt.err == nil {
				require.NoError(t, got)
				return
			}
			require.Error(t, got)
			require.Equal(t, tt.wantDataset, errors.Is(got, models.ErrInvalidDataset))
			require.ErrorContains(t, got, tt.contains)
		})
	}
}
