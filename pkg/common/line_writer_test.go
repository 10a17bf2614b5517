package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineWriter(t *testing.T) {
	lines := make([]string, 0)
	lineHandler := func(s string) {
		lines = append(lines, s)
	}

	lineWriter := NewLineWriter(lineHandler)

	assert := assert.New(t)
	write := func(s string) {
		n, err := lineWriter.Write([]byte(s))
		assert.NoError(err)
		assert.Equal(len(s), n, s)
	}

	write("cache hit (direct)")
	write("  ")
	write("123\ncache")
	write(" size\n 4.2 GB\nmax")
	write(" cache size  5.0 GB\n")
	write("no newline here...")

	assert.Len(lines, 4)
	assert.Equal("cache hit (direct)  123\n", lines[0])
	assert.Equal("cache size\n", lines[1])
	assert.Equal(" 4.2 GB\n", lines[2])
	assert.Equal("max cache size  5.0 GB\n", lines[3])
}
