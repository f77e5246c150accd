// Package version compares package version strings using apk-tools'
// ordering semantics.
//
// The grammar and the comparison algorithm are modeled closely on apk's
// version.c so that the results match the package manager bit for bit:
// versions consist of dot-separated numeric components, optional letter
// suffixes, `_suffix` keywords (alpha, beta, pre, rc sort before the
// release; cvs, svn, git, hg, p sort after) and a `-rN` revision.
//
// Tokenization is a small state machine over an enumerated token kind.
// Invalid input never panics or errors; the tokenizer reports a sentinel
// kind instead and [Validate] exposes it as a boolean.
package version

import "strings"

// token enumerates the token kinds produced while scanning a version
// string. The numeric values define a total order that the comparison
// algorithm relies on (a digit loses against a letter, everything loses
// against end-of-string), so they must not be reordered.
type token int8

const (
	tokenInvalid     token = iota - 1 // unparseable input
	tokenDigitOrZero                  // numeric component after a separator
	tokenDigit                        // numeric component
	tokenLetter                       // single lowercase letter
	tokenSuffix                       // _keyword suffix (alpha, rc, p, ...)
	tokenSuffixNo                     // digits directly after a suffix keyword
	tokenRevisionNo                   // digits after the -r revision marker
	tokenEnd                          // end of string
)

// Suffix keywords in comparison order. Pre-release keywords map to
// negative values (most negative first), post-release keywords to their
// position, so "alpha" < "beta" < release < "cvs" < ... < "p".
var (
	suffixesPre  = []string{"alpha", "beta", "pre", "rc"}
	suffixesPost = []string{"cvs", "svn", "git", "hg", "p"}
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

// nextToken classifies the upcoming token given the one before it. It
// consumes a leading '.', '_' or '-r' separator from rest when one is
// present, but never the token itself.
//
// A transition to a lower-ordered token kind is only allowed for the
// explicit digit/letter and suffix/number interleavings; every other
// backward transition yields tokenInvalid.
func nextToken(previous token, rest string) (token, string) {
	next := tokenInvalid
	var c byte
	if len(rest) > 0 {
		c = rest[0]
	}

	switch {
	// Tokens that do not consume a separator.
	case len(rest) == 0:
		next = tokenEnd
	case (previous == tokenDigit || previous == tokenDigitOrZero) && isLower(c):
		next = tokenLetter
	case previous == tokenLetter && isDigit(c):
		next = tokenDigit
	case previous == tokenSuffix && isDigit(c):
		next = tokenSuffixNo

	// Tokens that consume a separator character.
	default:
		switch {
		case c == '.':
			next = tokenDigitOrZero
		case c == '_':
			next = tokenSuffix
		case strings.HasPrefix(rest, "-r"):
			next = tokenRevisionNo
			rest = rest[1:]
		case c == '-':
			next = tokenInvalid
		}
		rest = rest[1:]
	}

	// Validate the transition from previous to next.
	if next < previous {
		if !((next == tokenDigitOrZero && previous == tokenDigit) ||
			(next == tokenSuffix && previous == tokenSuffixNo) ||
			(next == tokenDigit && previous == tokenLetter)) {
			next = tokenInvalid
		}
	}
	return next, rest
}

// parseSuffix cuts a suffix keyword off the front of rest and returns its
// comparison value. Pre-release suffixes get negative values so they sort
// before the plain release, post-release suffixes non-negative ones.
// invalid is true when rest does not start with a known keyword.
func parseSuffix(rest string) (remainder string, value int, invalid bool) {
	for i, s := range suffixesPre {
		if strings.HasPrefix(rest, s) {
			return rest[len(s):], i - len(suffixesPre), false
		}
	}
	for i, s := range suffixesPost {
		if strings.HasPrefix(rest, s) {
			return rest[len(s):], i, false
		}
	}
	return rest, 0, true
}

// getToken consumes one whole token from rest: it determines the token's
// value, advances past it, and classifies the token that follows.
//
// Leading zeros in a component are bias-adjusted: each stripped zero
// subtracts one from the value, which reproduces apk's "0.0002" handling
// without materializing the zeros.
func getToken(previous token, rest string) (next token, value int, remainder string) {
	next = tokenInvalid
	invalidSuffix := false

	if len(rest) == 0 {
		return tokenEnd, 0, rest
	}

	switch {
	// Cut off leading zero digits.
	case previous == tokenDigitOrZero && rest[0] == '0':
		for len(rest) > 0 && rest[0] == '0' {
			rest = rest[1:]
			value--
		}
		next = tokenDigit

	// Accumulate numeric values.
	case previous == tokenDigitOrZero || previous == tokenDigit ||
		previous == tokenSuffixNo || previous == tokenRevisionNo:
		for len(rest) > 0 && isDigit(rest[0]) {
			value = value*10 + int(rest[0]-'0')
			rest = rest[1:]
		}

	// Single letter, or a suffix keyword.
	case previous == tokenLetter:
		value = int(rest[0])
		rest = rest[1:]
	case previous == tokenSuffix:
		rest, value, invalidSuffix = parseSuffix(rest)

	// previous is end or invalid; there is nothing sensible to parse.
	default:
		value = -1
	}

	if len(rest) == 0 {
		next = tokenEnd
	} else if next == tokenInvalid && !invalidSuffix {
		next, rest = nextToken(previous, rest)
	}
	return next, value, rest
}

// Validate reports whether v is a well-formed version string: tokenizing
// it from the initial digit state reaches end-of-string without ever
// producing an invalid token.
//
// Note the grammar's quirks: "6.0.0002" is valid (leading-zero digits),
// while "6.0_1" and "6.0_0002" are not (a bare "_" must introduce a known
// suffix keyword).
func Validate(v string) bool {
	current := tokenDigit
	rest := v
	for current != tokenEnd {
		current, _, rest = getToken(current, rest)
		if current == tokenInvalid {
			return false
		}
	}
	return true
}

// Compare compares two version strings and returns -1, 0 or 1 when a is
// lower than, equal to, or higher than b.
//
// The result replicates apk_version_compare_blob exactly, including its
// treatment of invalid input: comparison stops at the first diverging
// token and decides on that token's value and kind.
func Compare(a, b string) int {
	return compare(a, b, false)
}

// CompareFuzzy is like Compare but treats version strings that diverge
// only in token kind at the point of divergence as equal. This is used
// for prefix-style range checks ("1.0" matches "1.0.2"), not equality.
func CompareFuzzy(a, b string) int {
	return compare(a, b, true)
}

func compare(a, b string, fuzzy bool) int {
	aToken, bToken := tokenDigit, tokenDigit
	aValue, bValue := 0, 0
	aRest, bRest := a, b

	// Walk both strings in lockstep until the current tokens diverge in
	// kind or value, or either string terminates.
	for aToken == bToken && aToken != tokenEnd && aToken != tokenInvalid &&
		aValue == bValue {
		aToken, aValue, aRest = getToken(aToken, aRest)
		bToken, bValue, bRest = getToken(bToken, bRest)
	}

	// Compare the values inside the diverging tokens.
	if aValue < bValue {
		return -1
	}
	if aValue > bValue {
		return 1
	}

	// Same kind, or fuzzy mode flattens a kind-only divergence.
	if aToken == bToken || fuzzy {
		return 0
	}

	// Values are equal but the kinds differ: the non-terminating side is
	// greater, unless its suffix marks a pre-release.
	if aToken == tokenSuffix {
		if aToken, aValue, aRest = getToken(aToken, aRest); aValue < 0 {
			return -1
		}
	}
	if bToken == tokenSuffix {
		if bToken, bValue, bRest = getToken(bToken, bRest); bValue < 0 {
			return 1
		}
	}

	// Compare the token kinds themselves (digit < letter < ... < end).
	if aToken > bToken {
		return -1
	}
	if aToken < bToken {
		return 1
	}
	return 0
}
