package search

import "math"

// maxBits is the longest pattern a single bitap pass handles.
const maxBits = 32

type chunk struct {
	pattern    []rune
	alphabet   map[rune]uint64
	startIndex int
}

func newChunk(pattern []rune, startIndex int) chunk {
	alphabet := make(map[rune]uint64, len(pattern))
	for i, r := range pattern {
		alphabet[r] |= 1 << uint(len(pattern)-i-1)
	}
	return chunk{pattern: pattern, alphabet: alphabet, startIndex: startIndex}
}

// splitPattern cuts long patterns into maxBits sized pieces. A trailing
// remainder is covered by one final piece ending at the pattern end.
func splitPattern(pattern []rune) []chunk {
	if len(pattern) <= maxBits {
		return []chunk{newChunk(pattern, 0)}
	}

	var chunks []chunk
	remainder := len(pattern) % maxBits
	end := len(pattern) - remainder
	for i := 0; i < end; i += maxBits {
		chunks = append(chunks, newChunk(pattern[i:i+maxBits], i))
	}
	if remainder > 0 {
		start := len(pattern) - maxBits
		chunks = append(chunks, newChunk(pattern[start:], start))
	}
	return chunks
}

type scoreParams struct {
	patternLen       int
	errors           int
	currentLocation  int
	expectedLocation int
	distance         int
	ignoreLocation   bool
}

func computeScore(p scoreParams) float64 {
	accuracy := float64(p.errors) / float64(p.patternLen)
	if p.ignoreLocation {
		return accuracy
	}

	proximity := p.expectedLocation - p.currentLocation
	if proximity < 0 {
		proximity = -proximity
	}
	if p.distance == 0 {
		if proximity > 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(p.distance)
}

// bitap scores how well c.pattern occurs in text near location, allowing
// errors up to the threshold. Lower scores are better.
func bitap(text []rune, c chunk, location, distance int, threshold float64, ignoreLocation bool) (bool, float64) {
	pattern := c.pattern
	patternLen := len(pattern)
	textLen := len(text)
	expectedLocation := location
	if expectedLocation > textLen {
		expectedLocation = textLen
	}
	if expectedLocation < 0 {
		expectedLocation = 0
	}

	params := func(errors, current int) scoreParams {
		return scoreParams{
			patternLen:       patternLen,
			errors:           errors,
			currentLocation:  current,
			expectedLocation: expectedLocation,
			distance:         distance,
			ignoreLocation:   ignoreLocation,
		}
	}

	currentThreshold := threshold
	bestLocation := expectedLocation

	// Exact occurrences tighten the threshold before the fuzzy pass.
	for {
		index := indexRunes(text, pattern, bestLocation)
		if index < 0 {
			break
		}
		currentThreshold = math.Min(computeScore(params(0, index)), currentThreshold)
		bestLocation = index + patternLen
	}

	bestLocation = -1
	var lastBitArr []uint64
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint64(1) << uint(patternLen-1)

	for i := 0; i < patternLen; i++ {
		binMin := 0
		binMid := binMax
		for binMin < binMid {
			if computeScore(params(i, expectedLocation+binMid)) <= currentThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := expectedLocation - binMid + 1
		if start < 1 {
			start = 1
		}
		finish := expectedLocation + binMid
		if finish > textLen {
			finish = textLen
		}
		finish += patternLen

		bitArr := make([]uint64, finish+2)
		bitArr[finish+1] = (uint64(1) << uint(i)) - 1

		for j := finish; j >= start; j-- {
			currentLocation := j - 1
			var charMatch uint64
			if currentLocation < textLen {
				charMatch = c.alphabet[text[currentLocation]]
			}

			bitArr[j] = ((bitArr[j+1] << 1) | 1) & charMatch
			if i > 0 {
				bitArr[j] |= ((at(lastBitArr, j+1) | at(lastBitArr, j)) << 1) | 1 | at(lastBitArr, j+1)
			}

			if bitArr[j]&mask != 0 {
				finalScore = computeScore(params(i, currentLocation))
				if finalScore <= currentThreshold {
					currentThreshold = finalScore
					bestLocation = currentLocation
					if bestLocation <= expectedLocation {
						break
					}
					start = 2*expectedLocation - bestLocation
					if start < 1 {
						start = 1
					}
				}
			}
		}

		if computeScore(params(i+1, expectedLocation)) > currentThreshold {
			break
		}
		lastBitArr = bitArr
	}

	return bestLocation >= 0, math.Max(0.001, finalScore)
}

func at(bits []uint64, i int) uint64 {
	if i < 0 || i >= len(bits) {
		return 0
	}
	return bits[i]
}

func indexRunes(text, pattern []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(pattern) <= len(text); i++ {
		match := true
		for k, r := range pattern {
			if text[i+k] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
