package dma

import (
	"strings"
)

// FlagStringMapping produces human-readable renderings of bitmask types by
// joining the names of registered bits.
type FlagStringMapping[T ~uint32] struct {
	mapping map[T]string
}

func NewFlagStringMapping[T ~uint32]() FlagStringMapping[T] {
	return FlagStringMapping[T]{mapping: make(map[T]string)}
}

func (m FlagStringMapping[T]) Register(flag T, name string) {
	m.mapping[flag] = name
}

func (m FlagStringMapping[T]) FlagsToString(flags T) string {
	if flags == 0 {
		return ""
	}

	var names []string
	for bit := 0; bit < 32; bit++ {
		flag := T(1 << bit)
		if flags&flag == 0 {
			continue
		}

		name, ok := m.mapping[flag]
		if !ok {
			continue
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}
