package cachetool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ccacheStatsEmptyFixture = `cache directory                     /home/runner/.ccache
primary config                      /home/runner/.ccache/ccache.conf
stats updated                       Thu Aug 27 10:14:02 2026
cache hit (direct)                     0
cache hit (preprocessed)               0
cache miss                             0
files in cache                         0
cache size                           0.0 kB
max cache size                       5.0 GB
`

const ccacheStatsUsedFixture = `cache directory                     /home/runner/.ccache
cache hit (direct)                   123
cache miss                            45
files in cache                        42
cache size                           3.2 MB
max cache size                       5.0 GB
`

const ccacheVerboseEmptyFixture = `Cacheable calls:     0 /   0
Local storage:
  Cache size (GB): 0.0 / 5.0 ( 0.00%)
  Files:               0
  Hits:                0 /   0
  Misses:              0 /   0
`

const ccacheVerboseUsedFixture = `Cacheable calls:   168 / 168 (100.0%)
  Hits:            123 / 168 ( 73.2%)
  Misses:           45 / 168 ( 26.8%)
Local storage:
  Cache size (GB): 0.2 / 5.0 ( 4.00%)
  Files:             336
  Hits:            123 / 168 ( 73.2%)
`

const sccacheStatsEmptyFixture = `Compile requests                      0
Compile requests executed             0
Cache hits                            0
Cache size                        0 bytes
Max cache size                       10 GiB
`

const sccacheStatsUsedFixture = `Compile requests                    168
Compile requests executed           160
Cache hits                          123
Cache size                        3 MiB
Max cache size                       10 GiB
`

func TestEmptinessPredicates(t *testing.T) {
	assert.True(t, ccacheStatsEmpty(ccacheStatsEmptyFixture))
	assert.False(t, ccacheStatsEmpty(ccacheStatsUsedFixture))

	assert.True(t, ccacheVerboseStatsEmpty(ccacheVerboseEmptyFixture))
	assert.False(t, ccacheVerboseStatsEmpty(ccacheVerboseUsedFixture))

	assert.True(t, sccacheStatsEmpty(sccacheStatsEmptyFixture))
	assert.False(t, sccacheStatsEmpty(sccacheStatsUsedFixture))
}

func TestEmptinessPredicatesMinimal(t *testing.T) {
	// the documented contract on the non-verbose branch
	assert.True(t, ccacheStatsEmpty("files in cache: 0"))
	assert.False(t, ccacheStatsEmpty("files in cache: 42"))
}

func TestEmptinessPredicatesGarbage(t *testing.T) {
	// unexpected output defaults to "not empty"
	garbage := "unexpected tool output\n"
	assert.False(t, ccacheStatsEmpty(garbage))
	assert.False(t, ccacheVerboseStatsEmpty(garbage))
	assert.False(t, sccacheStatsEmpty(garbage))
}

func TestIsEmptyPicksBranch(t *testing.T) {
	tests := []struct {
		name       string
		variant    Variant
		verbose    bool
		wantArgs   []string
		output     string
		wantResult bool
	}{
		{"ccache verbose", Ccache, true, []string{"-s", "-v"}, ccacheVerboseEmptyFixture, true},
		{"ccache plain", Ccache, false, []string{"-s"}, ccacheStatsUsedFixture, false},
		{"sccache ignores verbose support", Sccache, true, []string{"-s"}, sccacheStatsEmptyFixture, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, calls := fakeTool(tt.variant, func(_ []string) (string, error) {
				return tt.output, nil
			})

			empty, err := tool.IsEmpty(context.Background(), tt.verbose)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, empty)
			assert.Equal(t, [][]string{tt.wantArgs}, *calls)
		})
	}
}
