package benchmarks

// dataBase is where memory workloads keep their data (KSEG0, 64KB into RAM).
const dataBase = 0x80010000

// GetMicrobenchmarks returns the standard set of workloads. Each one targets
// a specific part of the core and leaves a known value in v0.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		mixedOperations(),
		dotProduct(),
		loopSimulation(),
		doublewordShift(),
	}
}

// GetCoreBenchmarks returns a minimal set of workloads for quick validation:
// a loop, a multiply-heavy kernel and call/return code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSimulation(),
		dotProduct(),
		functionCalls(),
	}
}

// 1. Arithmetic Sequential - independent ALU operations
func arithmeticSequential() Benchmark {
	var program []uint32
	for i := 0; i < 4; i++ {
		for r := uint8(regT0); r <= regT4; r++ {
			program = append(program, EncodeADDIU(r, r, 1))
		}
	}
	program = append(program,
		EncodeADDU(regV0, regT4, regZero),
		EncodeSYSCALL(),
	)

	return Benchmark{
		Name:           "arithmetic_sequential",
		Description:    "20 independent ADDIU operations across 5 registers",
		Program:        program,
		ExpectedResult: 4,
	}
}

// 2. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	program := make([]uint32, 0, 21)
	for i := 0; i < 20; i++ {
		program = append(program, EncodeADDIU(regV0, regV0, 1))
	}
	program = append(program, EncodeSYSCALL())

	return Benchmark{
		Name:           "dependency_chain",
		Description:    "20 dependent ADDIUs (v0 = v0 + 1)",
		Program:        program,
		ExpectedResult: 20,
	}
}

// 3. Memory Sequential - stores then loads a small array
func memorySequential() Benchmark {
	program := []uint32{EncodeLUI(regT9, dataBase>>16)}
	for i := int16(0); i < 8; i++ {
		program = append(program,
			EncodeADDIU(regT0, regZero, i+1),
			EncodeSW(regT0, regT9, 4*i),
		)
	}
	for i := int16(0); i < 8; i++ {
		program = append(program,
			EncodeLW(regT1, regT9, 4*i),
			EncodeADDU(regV0, regV0, regT1),
		)
	}
	program = append(program, EncodeSYSCALL())

	return Benchmark{
		Name:           "memory_sequential",
		Description:    "8 word stores followed by 8 loads summed into v0",
		Program:        program,
		ExpectedResult: 36,
	}
}

// 4. Function Calls - JAL/JR with work in the return delay slot
func functionCalls() Benchmark {
	fn := ProgramBase + 7*4

	return Benchmark{
		Name:        "function_calls",
		Description: "3 calls to a leaf function that increments v0",
		Program: []uint32{
			EncodeJAL(fn),
			EncodeNOP(),
			EncodeJAL(fn),
			EncodeNOP(),
			EncodeJAL(fn),
			EncodeNOP(),
			EncodeSYSCALL(),
			// fn:
			EncodeJR(regRA),
			EncodeADDIU(regV0, regV0, 1), // delay slot
		},
		ExpectedResult: 3,
	}
}

// 5. Branch Taken - a short counted loop
func branchTaken() Benchmark {
	return Benchmark{
		Name:        "branch_taken",
		Description: "10 iterations of a BNE loop",
		Program: []uint32{
			EncodeADDIU(regT0, regZero, 10),
			// loop:
			EncodeADDIU(regV0, regV0, 1),
			EncodeADDIU(regT0, regT0, -1),
			EncodeBNE(regT0, regZero, -3),
			EncodeNOP(),
			EncodeSYSCALL(),
		},
		ExpectedResult: 10,
	}
}

// 6. Mixed Operations - multiply, divide, shifts and logic
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "MULT, DIV, HI/LO moves, shift and logical immediate",
		Program: []uint32{
			EncodeADDIU(regT0, regZero, 6),
			EncodeADDIU(regT1, regZero, 7),
			EncodeMULT(regT0, regT1),
			EncodeMFLO(regT2), // 42
			EncodeADDIU(regT3, regZero, 5),
			EncodeDIV(regT2, regT3),
			EncodeMFLO(regT4), // 8
			EncodeMFHI(regT5), // 2
			EncodeADDU(regV0, regT4, regT5),
			EncodeSLL(regV0, regV0, 2),
			EncodeORI(regV0, regV0, 2),
			EncodeSYSCALL(),
		},
		ExpectedResult: 42,
	}
}

// 7. Dot Product - loads and multiply-accumulate over two vectors
func dotProduct() Benchmark {
	a := []int16{1, 2, 3, 4}
	b := []int16{5, 6, 7, 8}

	program := []uint32{EncodeLUI(regT9, dataBase>>16)}
	for i := range a {
		off := int16(4 * i)
		program = append(program,
			EncodeADDIU(regT0, regZero, a[i]),
			EncodeSW(regT0, regT9, off),
			EncodeADDIU(regT0, regZero, b[i]),
			EncodeSW(regT0, regT9, off+16),
		)
	}
	for i := range a {
		off := int16(4 * i)
		program = append(program,
			EncodeLW(regT0, regT9, off),
			EncodeLW(regT1, regT9, off+16),
			EncodeMULT(regT0, regT1),
			EncodeMFLO(regT2),
			EncodeADDU(regV0, regV0, regT2),
		)
	}
	program = append(program, EncodeSYSCALL())

	return Benchmark{
		Name:           "dot_product",
		Description:    "4-element dot product through memory",
		Program:        program,
		ExpectedResult: 70,
	}
}

// 8. Loop Simulation - sum 1..100
func loopSimulation() Benchmark {
	return Benchmark{
		Name:        "loop_simulation",
		Description: "sum of 1..100 with a BGTZ loop",
		Program: []uint32{
			EncodeADDIU(regT0, regZero, 100),
			// loop:
			EncodeADDU(regV0, regV0, regT0),
			EncodeADDIU(regT0, regT0, -1),
			EncodeBGTZ(regT0, -3),
			EncodeNOP(),
			EncodeSYSCALL(),
		},
		ExpectedResult: 5050,
	}
}

// 9. Doubleword Shift - 64-bit shifts past the low word
func doublewordShift() Benchmark {
	return Benchmark{
		Name:        "doubleword_shift",
		Description: "DSLL32 then DSRA32 round trip through the high word",
		Program: []uint32{
			EncodeADDIU(regT0, regZero, 3),
			EncodeDSLL32(regT0, regT0, 4),
			EncodeDSRA32(regV0, regT0, 4),
			EncodeSYSCALL(),
		},
		ExpectedResult: 3,
	}
}
