package main

import "strings"

// stringList accumulates repeated occurrences of a flag, e.g. multiple
// -seed flags naming several seed stores in registration order.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}
