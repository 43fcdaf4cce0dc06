package fixture

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		want    []Case
		wantErr error
	}{
		{
			name:   "json",
			data:   `[[1, 10, 6], [-9223372036854775808, 2, 1], [9223372036854775807, 1, 0]]`,
			format: FormatJSON,
			want: []Case{
				{State: 1, Buckets: 10, Expected: 6},
				{State: math.MinInt64, Buckets: 2, Expected: 1},
				{State: math.MaxInt64, Buckets: 1, Expected: 0},
			},
		},
		{
			name:   "yaml",
			data:   "- [1, 10, 6]\n- [-9223372036854775808, 2, 1]\n",
			format: FormatYAML,
			want: []Case{
				{State: 1, Buckets: 10, Expected: 6},
				{State: math.MinInt64, Buckets: 2, Expected: 1},
			},
		},
		{
			name:   "empty",
			data:   `[]`,
			format: FormatJSON,
			want:   []Case{},
		},
		{
			name:    "short row",
			data:    `[[1, 10]]`,
			format:  FormatJSON,
			wantErr: ErrMalformedCase,
		},
		{
			name:    "buckets overflow int32",
			data:    `[[1, 2147483648, 0]]`,
			format:  FormatJSON,
			wantErr: ErrMalformedCase,
		},
		{
			name:    "state overflows int64",
			data:    `[[9223372036854775808, 2, 0]]`,
			format:  FormatJSON,
			wantErr: ErrMalformedCase,
		},
		{
			name:    "not a table",
			data:    "state: 1\n",
			format:  FormatYAML,
			wantErr: ErrMalformedCase,
		},
		{
			name:    "unknown format",
			data:    `[]`,
			format:  Format("toml"),
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.format)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("yaml file", func(t *testing.T) {
		cases, err := Load("testdata/cases.yaml")
		require.NoError(t, err)
		require.Len(t, cases, 30)
		require.Equal(t, Case{State: 0, Buckets: 1, Expected: 0}, cases[0])
	})

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.json")
		require.NoError(t, os.WriteFile(path, []byte(`[[34, 1000, 778]]`), 0o600))

		cases, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, []Case{{State: 34, Buckets: 1000, Expected: 778}}, cases)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load("testdata/cases.txt")
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":    FormatJSON,
		"b.JSON":    FormatJSON,
		"c.yaml":    FormatYAML,
		"dir/d.yml": FormatYAML,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestVerify(t *testing.T) {
	cases := make([]Case, 0, 100)
	for i := range 100 {
		cases = append(cases, Case{State: int64(i), Buckets: 10, Expected: int32(i % 10)})
	}
	modulo := func(state int64, buckets int32) int32 { return int32(state % int64(buckets)) }

	t.Run("all match", func(t *testing.T) {
		for _, workers := range []int{0, 1, 3, 8, 1000} {
			mismatches, err := Verify(context.Background(), cases, modulo, workers)
			require.NoError(t, err)
			require.Empty(t, mismatches, "workers=%d", workers)
		}
	})

	t.Run("mismatches in table order", func(t *testing.T) {
		broken := func(state int64, buckets int32) int32 {
			if state%25 == 0 {
				return -1
			}
			return modulo(state, buckets)
		}

		mismatches, err := Verify(context.Background(), cases, broken, 4)
		require.NoError(t, err)
		require.Len(t, mismatches, 4)
		for i, m := range mismatches {
			assert.Equal(t, i*25, m.Index)
			assert.Equal(t, int64(i*25), m.State)
			assert.Equal(t, int32(-1), m.Got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		mismatches, err := Verify(context.Background(), nil, modulo, 4)
		require.NoError(t, err)
		require.Empty(t, mismatches)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Verify(ctx, cases, modulo, 2)
		require.ErrorIs(t, err, context.Canceled)
	})
}
