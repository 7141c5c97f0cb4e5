package ast

import "fmt"

func unsupportedKind(k Kind) error {
	return fmt.Errorf("ast: node kind %d has no eval case", k)
}
