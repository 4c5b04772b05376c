package sampler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []string{"Sunny", "Cloudy", "Rainy", "Windy", "Stormy", "Snowy"}

var strategies = []Strategy{StrategyShuffle, StrategyKeyed}

func TestSample_FullPermutation(t *testing.T) {
	for _, s := range strategies {
		t.Run(string(s), func(t *testing.T) {
			got, err := Sample(testCatalog, len(testCatalog), WithStrategy(s))
			require.NoError(t, err)
			assert.Len(t, got, len(testCatalog))
			assert.ElementsMatch(t, testCatalog, got)
		})
	}
}

func TestSample_Lengths(t *testing.T) {
	for _, s := range strategies {
		for n := 0; n <= len(testCatalog); n++ {
			got, err := Sample(testCatalog, n, WithStrategy(s))
			require.NoError(t, err)
			assert.Len(t, got, n, "strategy=%s n=%d", s, n)

			seen := make(map[string]bool, n)
			for _, v := range got {
				assert.Contains(t, testCatalog, v)
				assert.False(t, seen[v], "duplicate %q", v)
				seen[v] = true
			}
		}
	}
}

func TestSample_ZeroIsEmptyNotNil(t *testing.T) {
	for _, s := range strategies {
		got, err := Sample(testCatalog, 0, WithStrategy(s))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestSample_InvalidCount(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"negative", -1},
		{"one past length", len(testCatalog) + 1},
		{"far past length", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sample(testCatalog, tt.n)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Nil(t, got)
		})
	}
}

func TestSample_EmptySource(t *testing.T) {
	got, err := Sample([]string{}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Sample([]string{}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSample_DoesNotMutateSource(t *testing.T) {
	src := append([]string(nil), testCatalog...)
	for _, s := range strategies {
		for i := 0; i < 50; i++ {
			_, err := Sample(src, len(src), WithStrategy(s))
			require.NoError(t, err)
		}
	}
	assert.Equal(t, testCatalog, src)
}

func TestSample_ResultDoesNotAliasSource(t *testing.T) {
	src := append([]string(nil), testCatalog...)
	got, err := Sample(src, 3)
	require.NoError(t, err)

	got[0] = "mutated"
	assert.Equal(t, testCatalog, src)
}

func TestSample_SeededSourceIsDeterministic(t *testing.T) {
	for _, s := range strategies {
		t.Run(string(s), func(t *testing.T) {
			a, err := Sample(testCatalog, 6, WithStrategy(s), WithSource(NewSource(42)))
			require.NoError(t, err)
			b, err := Sample(testCatalog, 6, WithStrategy(s), WithSource(NewSource(42)))
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestSample_VariesAcrossCalls(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		got, err := Sample(testCatalog, len(testCatalog))
		require.NoError(t, err)
		seen[joinKey(got)] = true
	}
	// 200 draws over 720 orderings; a fixed seed would produce one.
	assert.Greater(t, len(seen), 50)
}

func TestSample_UnknownStrategy(t *testing.T) {
	_, err := Sample(testCatalog, 2, WithStrategy("bogus"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWithSource_NilKeepsDefault(t *testing.T) {
	got, err := Sample(testCatalog, 6, WithSource(nil))
	require.NoError(t, err)
	assert.ElementsMatch(t, testCatalog, got)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyShuffle, false},
		{"shuffle", StrategyShuffle, false},
		{"keyed", StrategyKeyed, false},
		{"Keyed", "", true},
		{"random", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUint64Inclusive_Bounds(t *testing.T) {
	src := NewSource(7)
	for _, n := range []uint64{0, 1, 2, 5, 6, 7, 1000, 1<<63 + 5} {
		for i := 0; i < 200; i++ {
			assert.LessOrEqual(t, uint64Inclusive(src, n), n)
		}
	}
}

func TestSourceReader_FillsPartialWords(t *testing.T) {
	r := sourceReader{src: NewSource(1)}
	buf := make([]byte, 13)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 13, n)
}

func joinKey(items []string) string {
	key := ""
	for _, s := range items {
		key += s + "|"
	}
	return key
}
