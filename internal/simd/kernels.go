package simd

// NucleotideCounts holds per-base occurrence counts for a sequence.
// Bytes outside {A,C,G,T,N} are counted in none of the fields.
type NucleotideCounts struct {
	A, C, G, T, N int
}

// Total returns the number of bytes classified into one of the five bases.
func (c NucleotideCounts) Total() int {
	return c.A + c.C + c.G + c.T + c.N
}

// Add returns the element-wise sum of c and o.
func (c NucleotideCounts) Add(o NucleotideCounts) NucleotideCounts {
	return NucleotideCounts{
		A: c.A + o.A,
		C: c.C + o.C,
		G: c.G + o.G,
		T: c.T + o.T,
		N: c.N + o.N,
	}
}

// Kernels is one complete set of scanning implementations.
//
// Every tier must return byte-identical results for the same input; the tiers
// differ only in speed.
type Kernels struct {
	ISA ISA

	// AppendNewlines appends the offset of every '\n' in data to dst.
	AppendNewlines func(dst []int, data []byte) []int
	// ValidateASCII reports whether every byte is < 0x80.
	ValidateASCII func(data []byte) bool
	// FirstNonASCII returns the index of the first byte >= 0x80, or -1.
	FirstNonASCII func(data []byte) int
	// CountChars counts occurrences of target.
	CountChars func(data []byte, target byte) int
	// CountNucleotides counts A, C, G, T and N.
	CountNucleotides func(seq []byte) NucleotideCounts
	// IndexByte returns the index of the first c in data, or -1.
	IndexByte func(data []byte, c byte) int
}

var (
	genericKernels = Kernels{
		ISA:              Generic,
		AppendNewlines:   appendNewlinesGeneric,
		ValidateASCII:    validateASCIIGeneric,
		FirstNonASCII:    firstNonASCIIGeneric,
		CountChars:       countCharsGeneric,
		CountNucleotides: countNucleotidesGeneric,
		IndexByte:        indexByteGeneric,
	}

	swarKernels = Kernels{
		ISA:              SWAR,
		AppendNewlines:   appendNewlinesSWAR,
		ValidateASCII:    validateASCIISWAR,
		FirstNonASCII:    firstNonASCIISWAR,
		CountChars:       countCharsSWAR,
		CountNucleotides: countNucleotidesSWAR,
		IndexByte:        indexByteSWAR,
	}

	vectorKernels = Kernels{
		ISA:              Vector,
		AppendNewlines:   appendNewlinesVector,
		ValidateASCII:    validateASCIISWAR,
		FirstNonASCII:    firstNonASCIISWAR,
		CountChars:       countCharsVector,
		CountNucleotides: countNucleotidesVector,
		IndexByte:        indexByteVector,
	}
)

// KernelsFor returns the kernel set for isa. Unknown values map to Generic.
//
// The returned kernels do not apply the short-input rule; callers exercising
// a tier directly (conformance tests, benchmarks) get that tier for every
// length.
func KernelsFor(isa ISA) Kernels {
	switch isa {
	case SWAR:
		return swarKernels
	case Vector:
		return vectorKernels
	default:
		return genericKernels
	}
}

// active returns the kernels selected by the capability probe.
func active() *Kernels {
	switch ActiveISA() {
	case Vector:
		return &vectorKernels
	case SWAR:
		return &swarKernels
	default:
		return &genericKernels
	}
}

// FindNewlines returns the ascending offsets of every '\n' in data.
func FindNewlines(data []byte) []int {
	return AppendNewlines(nil, data)
}

// AppendNewlines appends the offsets of every '\n' in data to dst.
func AppendNewlines(dst []int, data []byte) []int {
	if len(data) < VectorWidth {
		return appendNewlinesGeneric(dst, data)
	}
	return active().AppendNewlines(dst, data)
}

// ValidateASCII reports whether every byte in data is < 0x80.
func ValidateASCII(data []byte) bool {
	if len(data) < VectorWidth {
		return validateASCIIGeneric(data)
	}
	return active().ValidateASCII(data)
}

// FirstNonASCII returns the index of the first byte >= 0x80, or -1.
func FirstNonASCII(data []byte) int {
	if len(data) < VectorWidth {
		return firstNonASCIIGeneric(data)
	}
	return active().FirstNonASCII(data)
}

// CountChars returns the number of occurrences of target in data.
func CountChars(data []byte, target byte) int {
	if len(data) < VectorWidth {
		return countCharsGeneric(data, target)
	}
	return active().CountChars(data, target)
}

// CountNucleotides counts the uppercase bases A, C, G, T and N in seq.
func CountNucleotides(seq []byte) NucleotideCounts {
	if len(seq) < VectorWidth {
		return countNucleotidesGeneric(seq)
	}
	return active().CountNucleotides(seq)
}

// GCContent returns (G+C)/len(seq)*100, or 0 for an empty sequence.
func GCContent(seq []byte) float64 {
	if len(seq) == 0 {
		return 0
	}
	c := CountNucleotides(seq)
	return float64(c.G+c.C) / float64(len(seq)) * 100
}

// IndexByte returns the index of the first instance of c in data, or -1.
func IndexByte(data []byte, c byte) int {
	if len(data) < VectorWidth {
		return indexByteGeneric(data, c)
	}
	return active().IndexByte(data, c)
}
