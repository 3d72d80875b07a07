package scanner

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.map/internal/geom"
)

const sampleReport = `--- scanner 0 ---
404,-588,-901
528,-643,409
-838,591,734

--- scanner 1 ---
686,422,578
605,423,415
515,917,-361
686,422,578
`

func TestParse(t *testing.T) {
	scanners, err := Parse(strings.NewReader(sampleReport))
	require.NoError(t, err)
	require.Len(t, scanners, 2)

	assert.Equal(t, 0, scanners[0].ID)
	assert.True(t, scanners[0].IsResolved(), "scanner 0 is the reference")
	assert.Equal(t, []geom.Point{{404, -588, -901}, {528, -643, 409}, {-838, 591, 734}}, scanners[0].Local())

	assert.Equal(t, 1, scanners[1].ID)
	assert.False(t, scanners[1].IsResolved())
	assert.Equal(t, 3, scanners[1].Len(), "duplicate point collapses")
}

func TestParse_ToleratesExtraBlankLinesAndCRLF(t *testing.T) {
	input := "\r\n--- scanner 0 ---\r\n1,2,3\r\n\r\n\r\n--- scanner 1 ---\r\n 4, 5, 6 \r\n"
	scanners, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, scanners, 2)
	assert.Equal(t, []geom.Point{{4, 5, 6}}, scanners[1].Local())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"empty input", "", 0},
		{"non numeric", "--- scanner 0 ---\n1,x,3\n", 2},
		{"two coordinates", "--- scanner 0 ---\n1,2\n", 2},
		{"four coordinates", "--- scanner 0 ---\n1,2,3,4\n", 2},
		{"point before header", "1,2,3\n", 1},
		{"empty block", "--- scanner 0 ---\n\n--- scanner 1 ---\n1,2,3\n", 1},
		{"empty final block", "--- scanner 0 ---\n1,2,3\n\n--- scanner 1 ---\n", 4},
		{"bad header", "--- sensor 0 ---\n1,2,3\n", 1},
		{"bad id", "--- scanner zero ---\n1,2,3\n", 1},
		{"out of sequence", "--- scanner 0 ---\n1,2,3\n\n--- scanner 2 ---\n1,2,3\n", 4},
		{"missing reference", "--- scanner 1 ---\n1,2,3\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput), "got %v", err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	scanners, err := Parse(strings.NewReader(sampleReport))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, scanners))

	again, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(scanners))
	for i := range scanners {
		assert.Equal(t, scanners[i].Local(), again[i].Local())
	}
}
