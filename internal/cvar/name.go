package cvar

import "fmt"

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ValidateName enforces the CVar naming rule: the first
// character is a letter or underscore; subsequent characters are a
// letter, digit, underscore or dot; a dot must be followed by a letter or
// underscore; the name cannot end in a dot.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("cvar: name cannot be empty")
	}
	if !isAlpha(name[0]) && name[0] != '_' {
		return fmt.Errorf("cvar: name %q must start with a letter or underscore", name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		switch {
		case isAlpha(c) || isDigit(c) || c == '_':
			// always fine
		case c == '.':
			if i == len(name)-1 {
				return fmt.Errorf("cvar: name %q cannot end in a dot", name)
			}
			next := name[i+1]
			if !isAlpha(next) && next != '_' {
				return fmt.Errorf("cvar: name %q has a dot not followed by a letter or underscore", name)
			}
		default:
			return fmt.Errorf("cvar: name %q contains invalid character %q", name, string(c))
		}
	}
	return nil
}
