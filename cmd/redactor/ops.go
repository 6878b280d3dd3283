package main

import (
	"fmt"
	"strconv"
	"strings"
)

type formatOp struct {
	Index  int
	Length int
	Name   string
	Value  any
}

func (op formatOp) String() string {
	return fmt.Sprintf("%d:%d:%s=%v", op.Index, op.Length, op.Name, op.Value)
}

// formatOps собирает повторяющийся флаг -format вида index:length:name=value.
type formatOps []formatOp

func (o *formatOps) String() string {
	parts := make([]string, len(*o))
	for i, op := range *o {
		parts[i] = op.String()
	}
	return strings.Join(parts, ",")
}

func (o *formatOps) Set(raw string) error {
	op, err := parseFormatOp(raw)
	if err != nil {
		return err
	}
	*o = append(*o, op)
	return nil
}

func parseFormatOp(raw string) (formatOp, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return formatOp{}, fmt.Errorf("format %q: expected index:length:name=value", raw)
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return formatOp{}, fmt.Errorf("format %q: index: %w", raw, err)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return formatOp{}, fmt.Errorf("format %q: length: %w", raw, err)
	}
	name, value, _ := strings.Cut(parts[2], "=")
	if name == "" {
		return formatOp{}, fmt.Errorf("format %q: empty name", raw)
	}
	op := formatOp{Index: index, Length: length, Name: name, Value: true}
	if value != "" {
		op.Value = parseValue(value)
	}
	return op, nil
}

func parseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}
