package animate

const minPathLength = 100

func isCommand(r byte) bool {
	switch r {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

func isNumberChar(r byte) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E'
}

// approxPathLength estimates the drawn length of a path from its data string
// without evaluating curve geometry. Each command contributes a fixed cost and
// each coordinate pair a smaller one, floored so that tiny paths still get a
// visible drawing interval.
func approxPathLength(d string) float64 {
	commands := 0
	numbers := 0
	inNumber := false
	for i := 0; i < len(d); i++ {
		c := d[i]
		switch {
		case isCommand(c):
			commands++
			inNumber = false
		case isNumberChar(c):
			// exponent markers extend the current number
			if !inNumber {
				numbers++
				inNumber = true
			}
		default:
			inNumber = false
		}
	}

	length := float64(commands)*10 + float64(numbers/2)*5
	if length < minPathLength {
		length = minPathLength
	}
	return length
}
