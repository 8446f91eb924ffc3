/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package types

// NaturalLess compares strings so that embedded runs of digits are ordered by
// their numeric value, eg. "SRR9" sorts before "SRR10". Strings that compare
// equal that way (like "SRR01" and "SRR1") fall back to byte order.
func NaturalLess(a, b string) bool {
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			ei := digitsEnd(a, i)
			ej := digitsEnd(b, j)

			if c := compareDigits(a[i:ei], b[j:ej]); c != 0 {
				return c < 0
			}

			i, j = ei, ej

			continue
		}

		if ca != cb {
			return ca < cb
		}

		i++
		j++
	}

	if len(a)-i != len(b)-j {
		return len(a)-i < len(b)-j
	}

	return a < b
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitsEnd(s string, start int) int {
	for start < len(s) && isDigit(s[start]) {
		start++
	}

	return start
}

// compareDigits compares two strings of digits by numeric value without
// converting them, so arbitrarily long numbers work.
func compareDigits(a, b string) int {
	a = trimZeros(a)
	b = trimZeros(b)

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}

	return s
}
