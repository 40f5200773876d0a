// Package selection validates a user's choice of country from the list of
// countries present in the dataset, independently of how the choice is read.
package selection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNoCountries      = fmt.Errorf("%w: no countries available", ErrInvalidSelection)
	ErrNotANumber       = fmt.Errorf("%w: not a number or a known country", ErrInvalidSelection)
	ErrOutOfRange       = fmt.Errorf("%w: index out of range", ErrInvalidSelection)
)

// Select resolves input against countries. Input is either a 1-based index
// into countries or a country name, matched case-insensitively.
func Select(countries []string, input string) (string, error) {
	if len(countries) == 0 {
		return "", ErrNoCountries
	}

	input = strings.TrimSpace(input)
	n, err := strconv.Atoi(input)
	if err != nil {
		for _, c := range countries {
			if strings.EqualFold(c, input) {
				return c, nil
			}
		}
		return "", fmt.Errorf("%q: %w", input, ErrNotANumber)
	}

	if n < 1 || n > len(countries) {
		return "", fmt.Errorf("%d not in 1..%d: %w", n, len(countries), ErrOutOfRange)
	}
	return countries[n-1], nil
}

// Prompt lists countries on w as "i = Country" lines, reads one line from r
// and resolves it with Select.
func Prompt(r io.Reader, w io.Writer, countries []string) (string, error) {
	if len(countries) == 0 {
		return "", ErrNoCountries
	}

	for i, c := range countries {
		if _, err := fmt.Fprintf(w, "%d = %s\n", i+1, c); err != nil {
			return "", err
		}
	}
	if _, err := fmt.Fprint(w, "Select a country: "); err != nil {
		return "", err
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read selection: %w", err)
	}
	return Select(countries, line)
}
