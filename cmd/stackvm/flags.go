package main

import "strconv"

// countFlag is a boolean-style flag that counts its occurrences, so
// "-v -v" means verbosity 2.
type countFlag int

func (c *countFlag) String() string {
	if c == nil {
		return "0"
	}
	return strconv.Itoa(int(*c))
}

// Set increments the count for a bare "-v" and accepts an explicit
// "-v=N".
func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = countFlag(n)
	return nil
}

func (c *countFlag) IsBoolFlag() bool {
	return true
}
