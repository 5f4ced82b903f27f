package waveform

import "fmt"

// WordBits is the width of a packed digital output word.
const WordBits = 32

// DecomposeBits splits each packed word into nbits cells of 0 or 1; row i,
// column b holds bit b of values[i]. Positions past bit 31 read as 0.
func DecomposeBits(values []uint32, nbits int) ([][]uint8, error) {
	if nbits < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBitCount, nbits)
	}

	rows := make([][]uint8, len(values))
	cells := make([]uint8, len(values)*nbits)
	for i, v := range values {
		row := cells[i*nbits : (i+1)*nbits : (i+1)*nbits]
		for b := 0; b < nbits; b++ {
			if b < WordBits {
				row[b] = uint8((v >> uint(b)) & 1)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// BitColumn copies column b of a decomposed bitfield as float samples.
func BitColumn(bits [][]uint8, b int) []float64 {
	col := make([]float64, len(bits))
	for i, row := range bits {
		if b >= 0 && b < len(row) {
			col[i] = float64(row[b])
		}
	}
	return col
}
