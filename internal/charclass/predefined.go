package charclass

// Predefined character classes mirrored from the \d \w \s escape set and
// the letter/blank helpers that the parser (internal/parser) and the
// regex surface's detectCharacterClass-style fast paths rely on.

// Digit returns '0'..'9'.
func Digit() CharClass {
	return FromRange('0', '9')
}

// Letter returns 'A'..'Z' union 'a'..'z'.
func Letter() CharClass {
	return Union(FromRange('A', 'Z'), FromRange('a', 'z'))
}

// Word returns '0'..'9' union 'A'..'Z' union '_' union 'a'..'z' (the \w class).
func Word() CharClass {
	return Union(Union(Digit(), Letter()), Single('_'))
}

// Blank returns the standard whitespace set: \t \n \v \f \r and space.
func Blank() CharClass {
	return FromChars([]uint16{'\t', '\n', '\v', '\f', '\r', ' '})
}
