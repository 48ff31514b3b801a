package simd

// Scalar reference implementations. Every other tier is tested against these.

func appendNewlinesGeneric(dst []int, data []byte) []int {
	for i, b := range data {
		if b == '\n' {
			dst = append(dst, i)
		}
	}
	return dst
}

func validateASCIIGeneric(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

func firstNonASCIIGeneric(data []byte) int {
	for i, b := range data {
		if b >= 0x80 {
			return i
		}
	}
	return -1
}

func countCharsGeneric(data []byte, target byte) int {
	n := 0
	for _, b := range data {
		if b == target {
			n++
		}
	}
	return n
}

func countNucleotidesGeneric(seq []byte) NucleotideCounts {
	var c NucleotideCounts
	for _, b := range seq {
		switch b {
		case 'A':
			c.A++
		case 'C':
			c.C++
		case 'G':
			c.G++
		case 'T':
			c.T++
		case 'N':
			c.N++
		}
	}
	return c
}

func indexByteGeneric(data []byte, c byte) int {
	for i, b := range data {
		if b == c {
			return i
		}
	}
	return -1
}
